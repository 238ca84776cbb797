package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"inkmap/internal/mindmap"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats <map>",
	Short: "Structural statistics: sides, depth, leaves, balance, fragments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		st := mindmap.ComputeStats(s.engine.Nodes())
		if statsJSON {
			return writeJSON(cmd.OutOrStdout(), st)
		}
		printStats(cmd.OutOrStdout(), s.m.Title, st)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, title string, st *mindmap.Stats) {
	barLen := int(st.Balance * 20)
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Fprintf(w, "\n  %s\n", title)
	fmt.Fprintf(w, "  Balance: %.0f%%  [%s]\n", st.Balance*100, bar)

	section(w, "STRUCTURE")
	fmt.Fprintf(w, "  Nodes: %d  Edges: %d  Leaves: %d  Max depth: %d\n",
		st.TotalNodes, st.TotalEdges, st.Leaves, st.MaxDepth)
	fmt.Fprintf(w, "  Left:  %d nodes, %d leaves, depth %d\n", st.Left.Nodes, st.Left.Leaves, st.Left.MaxDepth)
	fmt.Fprintf(w, "  Right: %d nodes, %d leaves, depth %d\n", st.Right.Nodes, st.Right.Leaves, st.Right.MaxDepth)
	if st.WidestLevel != nil && st.WidestLevel.Depth > 0 {
		fmt.Fprintf(w, "  Widest level: %s depth %d (%d nodes)\n",
			st.WidestLevel.Side, st.WidestLevel.Depth, len(st.WidestLevel.NodeIDs))
	}
	if st.NewNodes > 0 {
		fmt.Fprintf(w, "  New (unreviewed) nodes: %d\n", st.NewNodes)
	}

	if st.Fragments > 1 || len(st.Unreachable) > 0 {
		section(w, "PROBLEMS")
		fmt.Fprintf(w, "  %d fragments, %d nodes unreachable from the root\n", st.Fragments, len(st.Unreachable))
		limit := 5
		if len(st.Unreachable) < limit {
			limit = len(st.Unreachable)
		}
		for _, id := range st.Unreachable[:limit] {
			fmt.Fprintf(w, "    - %s\n", shortID(id))
		}
		if len(st.Unreachable) > 5 {
			fmt.Fprintf(w, "    ... and %d more\n", len(st.Unreachable)-5)
		}
	}
	fmt.Fprintln(w)
}
