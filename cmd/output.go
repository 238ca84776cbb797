package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"inkmap/internal/assist"
	"inkmap/internal/mindmap"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncLabel(label string, maxLen int) string {
	label = strings.ReplaceAll(label, "\n", " ")
	if label == "" {
		return "(untitled)"
	}
	return assist.TruncateMiddle(label, maxLen)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n  %s\n", title)
	fmt.Fprintln(w, "  ────────────────────────────────────────")
}

// printTree renders the map side by side: the root, then the left branch,
// then the right branch, each in top-to-bottom order.
func printTree(w io.Writer, nodes []mindmap.Node) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "  (empty map)")
		return
	}
	root, err := mindmap.FindRoot(nodes)
	if err != nil {
		fmt.Fprintf(w, "  %v\n", err)
		return
	}
	fmt.Fprintf(w, "  %s  %s%s\n", shortID(root.ID), truncLabel(root.Label, 50), posSuffix(root))
	for _, side := range []mindmap.Direction{mindmap.DirectionLeft, mindmap.DirectionRight} {
		top := mindmap.ChildrenOf(nodes, root.ID, side)
		if len(top) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\n", side)
		for _, n := range top {
			printBranch(w, nodes, n, 1)
		}
	}
}

func printBranch(w io.Writer, nodes []mindmap.Node, n mindmap.Node, depth int) {
	marker := ""
	if n.IsNew {
		marker = " *"
	}
	if n.Selected {
		marker += " [selected]"
	}
	fmt.Fprintf(w, "  %s%s  %s%s%s\n",
		strings.Repeat("  ", depth), shortID(n.ID), truncLabel(n.Label, 50), marker, posSuffix(n))
	for _, c := range mindmap.ChildrenOf(nodes, n.ID, "") {
		printBranch(w, nodes, c, depth+1)
	}
}

func posSuffix(n mindmap.Node) string {
	if n.Position == nil {
		return ""
	}
	return fmt.Sprintf("  (%.0f, %.0f)", n.Position.X, n.Position.Y)
}
