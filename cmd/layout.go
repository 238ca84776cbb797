package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkmap/internal/mindmap"
)

var (
	layoutJSON   bool
	layoutLevels bool
)

type layoutOutput struct {
	MapID  string               `json:"map_id"`
	Title  string               `json:"title"`
	Nodes  []mindmap.Node       `json:"nodes"`
	Edges  []mindmap.Edge       `json:"edges"`
	Levels []mindmap.LevelGroup `json:"levels,omitempty"`
}

var layoutCmd = &cobra.Command{
	Use:   "layout <map>",
	Short: "Compute node positions and edges for a map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if layoutJSON {
			res := layoutOutput{
				MapID: s.m.ID,
				Title: s.m.Title,
				Nodes: s.engine.Nodes(),
				Edges: s.engine.Edges(),
			}
			if layoutLevels {
				res.Levels = s.engine.Levels()
			}
			return writeJSON(out, res)
		}

		fmt.Fprintf(out, "\n  %s  %s\n\n", shortID(s.m.ID), s.m.Title)
		printTree(out, s.engine.Nodes())

		if layoutLevels {
			section(out, "LEVELS")
			for _, lvl := range s.engine.Levels() {
				side := string(lvl.Side)
				if side == "" {
					side = "root"
				}
				fmt.Fprintf(out, "  %-5s depth %d: %d node(s)\n", side, lvl.Depth, len(lvl.NodeIDs))
			}
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "Output nodes, edges and levels as JSON")
	layoutCmd.Flags().BoolVar(&layoutLevels, "levels", false, "Include (side, depth) level groups")
	rootCmd.AddCommand(layoutCmd)
}
