package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hanyuone/ba-toolchain/abstractstore"
	"github.com/hanyuone/ba-toolchain/arch"
	"github.com/hanyuone/ba-toolchain/asi"
	"github.com/hanyuone/ba-toolchain/asitype"
	"github.com/hanyuone/ba-toolchain/internal/asiio"
)

func archByName(name string) (arch.Architecture, error) {
	switch name {
	case "amd64":
		return arch.AMD64, nil
	case "386", "x86":
		return arch.X86, nil
	case "arm":
		return arch.ARM, nil
	default:
		return arch.Architecture{}, fmt.Errorf("unknown architecture %q (want amd64, 386, or arm)", name)
	}
}

func loadFixture(path, archName string) ([]abstractstore.ALoc, []asi.Access, error) {
	a, err := archByName(archName)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer f.Close()

	fixture, err := asiio.Decode(f)
	if err != nil {
		return nil, nil, err
	}

	alocs, err := fixture.ToALocs(a)
	if err != nil {
		return nil, nil, err
	}
	accesses, err := fixture.ToAccesses(a)
	if err != nil {
		return nil, nil, err
	}
	return alocs, accesses, nil
}

func sortedALocs(result map[abstractstore.ALoc]asitype.Type) []abstractstore.ALoc {
	out := make([]abstractstore.ALoc, 0, len(result))
	for a := range result {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func newAnalyseCmd() *cobra.Command {
	var archName string
	var rusage bool

	cmd := &cobra.Command{
		Use:   "analyse <fixture.json>",
		Short: "Run the ASI pipeline over a fixture and print the refined a-loc map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alocs, accesses, err := loadFixture(args[0], archName)
			if err != nil {
				return err
			}

			result, err := asi.Analyse(alocs, accesses)
			if err != nil {
				return fmt.Errorf("analysing %s: %w", args[0], err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "aloc\tsize\ttype\toverflow\t\n")
			for _, a := range sortedALocs(result) {
				t := result[a]
				overflow := ""
				if t.BufferOverflow() {
					overflow = "yes"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t\n", a, t.Size(), t, overflow)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if rusage {
				reportRusage(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&archName, "arch", "amd64", "target architecture (amd64, 386, arm) for decoding hex-encoded fixture fields")
	cmd.Flags().BoolVar(&rusage, "rusage", false, "report peak RSS after analysis (linux only)")
	return cmd
}
