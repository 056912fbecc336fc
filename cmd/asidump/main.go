// The asidump tool runs aggregate structure identification over a
// JSON fixture of a-locs and memory accesses and prints the refined
// a-loc -> type map it recovers.
//
// Run "asidump help" for a list of commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overwritten at link time via -ldflags, the way a small
// Go CLI without a dedicated release-info package usually does it.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "asidump",
		Short: "Recover aggregate type structure from a-loc/access fixtures",
	}

	root.AddCommand(newAnalyseCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the asidump version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "asidump %s\n", version)
			return nil
		},
	}
}
