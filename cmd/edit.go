package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkmap/internal/mindmap"
)

var (
	insertX     float64
	insertY     float64
	insertLabel string
)

// commitIfLabeled ends the new-node state for nodes created with a label
func commitIfLabeled(s *mapSession, id, label string) error {
	if label == "" {
		return nil
	}
	return s.engine.CommitLabel(id, label)
}

func finish(cmd *cobra.Command, s *mapSession, format string, a ...any) error {
	if err := s.Err(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
	return nil
}

var insertCmd = &cobra.Command{
	Use:   "insert <map>",
	Short: "Insert a node at a canvas point, as a double-click on empty canvas would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		id, ins, err := s.engine.InsertAt(mindmap.Position{X: insertX, Y: insertY}, insertLabel)
		if err != nil {
			return err
		}
		if err := commitIfLabeled(s, id, insertLabel); err != nil {
			return err
		}
		if ins.BecomesRoot {
			return finish(cmd, s, "Created root %s\n", shortID(id))
		}
		return finish(cmd, s, "Inserted %s under %s (%s side, position %d)\n",
			shortID(id), shortID(ins.ParentID), ins.Direction, ins.SiblingIndex)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <map> [parent] <label>",
	Short: "Add a child under a parent node, or the root of an empty map",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 2 {
			id, err := s.engine.AddRoot(args[1])
			if err != nil {
				return err
			}
			if err := commitIfLabeled(s, id, args[1]); err != nil {
				return err
			}
			return finish(cmd, s, "Created root %s  %s\n", shortID(id), args[1])
		}

		parentID, err := ResolveNodeID(s.engine.Nodes(), args[1])
		if err != nil {
			return err
		}
		id, err := s.engine.AddChild(parentID, args[2])
		if err != nil {
			return err
		}
		if err := commitIfLabeled(s, id, args[2]); err != nil {
			return err
		}
		return finish(cmd, s, "Added %s  %s under %s\n", shortID(id), args[2], shortID(parentID))
	},
}

var deleteNodeCmd = &cobra.Command{
	Use:   "delete <map> <node>",
	Short: "Delete a node and its whole subtree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		nodes := s.engine.Nodes()
		id, err := ResolveNodeID(nodes, args[1])
		if err != nil {
			return err
		}
		removed := len(mindmap.Descendants(nodes, id))
		if err := s.engine.Delete(id); err != nil {
			return err
		}
		return finish(cmd, s, "Deleted %s (%d nodes)\n", shortID(id), removed)
	},
}

var labelCmd = &cobra.Command{
	Use:   "label <map> <node> <text>",
	Short: "Set a node's label",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := ResolveNodeID(s.engine.Nodes(), args[1])
		if err != nil {
			return err
		}
		actions, ok := s.engine.Actions(id)
		if !ok {
			return fmt.Errorf("node %s: %w", args[1], mindmap.ErrNodeNotFound)
		}
		if err := actions.CommitLabel(args[2]); err != nil {
			return err
		}
		return finish(cmd, s, "Labeled %s  %s\n", shortID(id), args[2])
	},
}

func init() {
	insertCmd.Flags().Float64Var(&insertX, "x", 0, "Canvas x coordinate")
	insertCmd.Flags().Float64Var(&insertY, "y", 0, "Canvas y coordinate")
	insertCmd.Flags().StringVar(&insertLabel, "label", "", "Label for the new node (empty leaves it pending)")
	insertCmd.MarkFlagRequired("x")
	insertCmd.MarkFlagRequired("y")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteNodeCmd)
	rootCmd.AddCommand(labelCmd)
}
