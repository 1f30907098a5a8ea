package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	herrors "github.com/vango-dev/vango-history/internal/errors"
	"github.com/vango-dev/vango-history/pkg/history"
)

func replCmd() *cobra.Command {
	var (
		capacity int
		initial  string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Explore a history interactively",
		Long: `Run a line-oriented session against a single history of strings.

Commands:
  set <value>    write a value
  undo           move back one value
  redo           move forward one value
  goto <index>   jump to an index
  reset <value>  replace the whole timeline
  show           print the timeline
  quit           exit

Examples:
  vango-history repl --capacity=3
  printf 'set a\nset b\nundo\nshow\n' | vango-history repl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			h, err := history.New(initial,
				history.WithCapacity(capacity),
				history.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout(), h)
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", history.DefaultCapacity, "Values kept in the history")
	cmd.Flags().StringVar(&initial, "initial", "", "Initial value")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log evictions and rejected navigation")

	return cmd
}

// runREPL executes commands from in against h until EOF or quit.
func runREPL(in io.Reader, out io.Writer, h *history.Store[string]) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		var (
			changed bool
			err     error
		)
		switch name {
		case "set":
			changed = h.Set(arg)
		case "undo":
			changed = h.Undo()
		case "redo":
			changed = h.Redo()
		case "goto":
			var index int
			index, err = strconv.Atoi(strings.TrimSpace(arg))
			if err == nil {
				changed = h.Goto(index)
			}
		case "reset":
			changed = h.Reset(arg)
		case "show":
			printTimeline(out, h)
			continue
		case "quit", "exit":
			return nil
		default:
			err = herrors.Newf(herrors.CategoryCLI, "unknown command %q", name)
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s -> %t  value=%q pointer=%d len=%d\n",
			name, changed, h.Value(), h.Pointer(), h.Len())
	}
	return scanner.Err()
}

func printTimeline(out io.Writer, h *history.Store[string]) {
	for i, v := range h.Timeline() {
		marker := " "
		if i == h.Pointer() {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %d %q\n", marker, i, v)
	}
}
