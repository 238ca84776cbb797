package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkmap/internal/assist"
	"inkmap/internal/mindmap"
)

var (
	suggestFile      string
	suggestStdin     bool
	suggestGenerator string
	suggestDryRun    bool
	suggestJSON      bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <map>",
	Short: "Add suggested child nodes from a file, stdin, or a generator command",
	Long: `Add suggested child nodes to a map.

Suggestions are "parent: label" lines. When the input contains --- lines,
each section between them is one suggestion whose later lines continue the
label. Parents may be given by id, id prefix or label.
With --generator (or assist.generator in config) the command receives the map
as JSON on stdin and prints one {"parent_id", "label"} object per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		suggestions, err := collectSuggestions(cmd, s)
		if err != nil {
			return err
		}
		if len(suggestions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No suggestions.")
			return nil
		}
		nodes := s.engine.Nodes()
		for i := range suggestions {
			if id, err := ResolveNodeID(nodes, suggestions[i].ParentID); err == nil {
				suggestions[i].ParentID = id
			}
		}

		var adder assist.Adder = s.engine
		var preview *mindmap.Engine
		if suggestDryRun {
			preview = mindmap.NewEngine(engineConfig(), mindmap.WithLogger(logger))
			if _, err := preview.Load(nodes); err != nil {
				return err
			}
			adder = preview
		}

		results := assist.Apply(adder, suggestions, logger)
		if err := s.Err(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if suggestJSON {
			return writeJSON(out, results)
		}
		printApplyResults(out, results)
		if preview != nil {
			section(out, "PREVIEW (not saved)")
			printTree(out, preview.Nodes())
			fmt.Fprintln(out)
		}
		return nil
	},
}

func collectSuggestions(cmd *cobra.Command, s *mapSession) ([]assist.Suggestion, error) {
	generator := suggestGenerator
	if generator == "" && suggestFile == "" && !suggestStdin && cfg != nil {
		generator = cfg.Assist.Generator
	}
	switch {
	case suggestFile != "" && suggestStdin:
		return nil, errors.New("use either --file or --stdin, not both")
	case suggestFile != "":
		return assist.ReadSuggestions(suggestFile)
	case suggestStdin:
		return assist.ReadSuggestions("-")
	case generator != "":
		return runGenerator(cmd, s, generator)
	default:
		return nil, errors.New("no suggestions source: use --file, --stdin or --generator")
	}
}

func runGenerator(cmd *cobra.Command, s *mapSession, command string) ([]assist.Suggestion, error) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gc := assist.GeneratorConfig{Command: command, Title: s.m.Title}
	if cfg != nil {
		gc.Timeout = cfg.Assist.Timeout
		gc.MaxStderr = cfg.Assist.MaxStderr
	}
	wd, err := os.Getwd()
	if err == nil {
		gc.WorkDir = wd
	}

	logger.Info("running generator", zap.String("command", assist.TruncateMiddle(command, 80)))
	res, err := assist.RunGenerator(ctx, gc, s.engine.Nodes(), logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Generator finished in %s: %d suggestions, %d skipped lines\n",
		assist.FormatDuration(res.Duration), len(res.Suggestions), res.Skipped)
	if res.ExitCode != 0 {
		msg := fmt.Sprintf("generator exited with code %d", res.ExitCode)
		if res.Stderr != "" {
			msg += ": " + assist.TruncateMiddle(res.Stderr, 500)
		}
		if res.StderrLost > 0 {
			msg += fmt.Sprintf(" (%d more bytes of stderr not kept)", res.StderrLost)
		}
		return nil, errors.New(msg)
	}
	return res.Suggestions, nil
}

func printApplyResults(w io.Writer, results []assist.ApplyResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "  ✗ %s: %s (%v)\n", shortID(r.Suggestion.ParentID), truncLabel(r.Suggestion.Label, 50), r.Err)
			continue
		}
		fmt.Fprintf(w, "  + %s  %s under %s\n", shortID(r.NodeID), truncLabel(r.Suggestion.Label, 50), shortID(r.Suggestion.ParentID))
	}
	fmt.Fprintf(w, "Applied %d of %d suggestions\n", assist.Applied(results), len(results))
}

func init() {
	suggestCmd.Flags().StringVar(&suggestFile, "file", "", "Read suggestions from a file")
	suggestCmd.Flags().BoolVar(&suggestStdin, "stdin", false, "Read suggestions from stdin")
	suggestCmd.Flags().StringVar(&suggestGenerator, "generator", "", "Shell command that prints JSON-lines suggestions")
	suggestCmd.Flags().BoolVar(&suggestDryRun, "dry-run", false, "Show the result without saving")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(suggestCmd)
}
