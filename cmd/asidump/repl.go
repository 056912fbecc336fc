package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hanyuone/ba-toolchain/abstractstore"
	"github.com/hanyuone/ba-toolchain/asi"
	"github.com/hanyuone/ba-toolchain/asitype"
)

// replSession holds the a-loc map a loaded fixture produced, keyed by
// its ALoc.String() form so the shell can look an entry up by the same
// name analyse printed.
type replSession struct {
	out     io.Writer
	byName  map[string]abstractstore.ALoc
	binding map[abstractstore.ALoc]asitype.Type
}

func newReplSession(out io.Writer, result map[abstractstore.ALoc]asitype.Type) *replSession {
	s := &replSession{out: out, byName: map[string]abstractstore.ALoc{}, binding: result}
	for a := range result {
		s.byName[a.String()] = a
	}
	return s
}

func (s *replSession) list() {
	for _, a := range sortedALocs(s.binding) {
		fmt.Fprintf(s.out, "%s\t%s\n", a, s.binding[a])
	}
}

func (s *replSession) show(name string) {
	a, ok := s.byName[name]
	if !ok {
		fmt.Fprintf(s.out, "no such a-loc: %s\n", name)
		return
	}
	t := s.binding[a]
	fmt.Fprintf(s.out, "%s: size=%d type=%s overflow=%v\n", a, t.Size(), t, t.BufferOverflow())
}

// dispatch runs one line of input and reports whether the shell should
// keep reading (false on "quit"/"exit"; EOF is handled by the read
// loop, not here).
func (s *replSession) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(s.out, "commands: list, show <aloc>, help, quit")
	case "list":
		s.list()
	case "show":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: show <aloc>")
			break
		}
		s.show(fields[1])
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", fields[0])
	}
	return true
}

func newReplCmd() *cobra.Command {
	var archName string

	cmd := &cobra.Command{
		Use:   "repl <fixture.json>",
		Short: "Load a fixture and explore its recovered a-loc map interactively",
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

			rl, err := readline.New("asi> ")
			if err != nil {
				return fmt.Errorf("starting repl: %w", err)
			}
			defer rl.Close()

			session := newReplSession(cmd.OutOrStdout(), result)
			fmt.Fprintf(session.out, "loaded %d a-locs from %s; type help for commands\n", len(result), args[0])

			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) {
						continue
					}
					return nil
				}
				if !session.dispatch(line) {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&archName, "arch", "amd64", "target architecture (amd64, 386, arm) for decoding hex-encoded fixture fields")
	return cmd
}
