package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkmap/internal/db"
	"inkmap/internal/mindmap"
)

var (
	importTitle string
	exportOut   string
	listJSON    bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a JSON map document into the database (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		title := importTitle
		if title == "" {
			title = doc.Title
		}
		if title == "" && args[0] != "-" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		if title == "" {
			title = "Untitled map"
		}

		d, err := OpenOrCreateDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		m, err := importDocument(d, title, doc.Nodes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s  %s (%d nodes)\n", shortID(m.ID), m.Title, m.NodeCount)
		return nil
	},
}

// importDocument validates and lays out nodes, then stores them as a new map.
// The map row is removed again if the document is rejected.
func importDocument(d *db.DB, title string, nodes []mindmap.Node) (*db.Map, error) {
	m, err := d.CreateMap(title)
	if err != nil {
		return nil, err
	}
	engine := mindmap.NewEngine(engineConfig(), mindmap.WithLogger(logger.With(zap.String("mapID", shortID(m.ID)))))
	_, loadErr := engine.Load(nodes)
	if loadErr == nil {
		loadErr = mindmap.SaveSnapshot(d, m.ID, engine.Nodes())
	}
	if loadErr != nil {
		if err := d.DeleteMap(m.ID); err != nil {
			logger.Warn("removing rejected map", zap.String("mapID", m.ID), zap.Error(err))
		}
		return nil, fmt.Errorf("importing %s: %w", title, loadErr)
	}
	m.NodeCount = len(engine.Nodes())
	return m, nil
}

var exportCmd = &cobra.Command{
	Use:   "export <map>",
	Short: "Export a map with computed positions as a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		doc := mindmap.Document{Title: s.m.Title, Nodes: s.engine.Nodes()}
		if exportOut == "" || exportOut == "-" {
			return writeJSON(cmd.OutOrStdout(), doc)
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOut, err)
		}
		if err := writeJSON(f, doc); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d nodes to %s\n", len(doc.Nodes), exportOut)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored maps, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		maps, err := d.ListMaps()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if listJSON {
			if maps == nil {
				maps = []db.Map{}
			}
			return writeJSON(out, maps)
		}
		if len(maps) == 0 {
			fmt.Fprintln(out, "No maps. Use 'inkmap import' to add one.")
			return nil
		}
		for _, m := range maps {
			updated := time.UnixMilli(m.UpdatedAt).Format("2006-01-02 15:04")
			fmt.Fprintf(out, "  %s  %-40s %4d nodes  %s\n",
				shortID(m.ID), truncLabel(m.Title, 40), m.NodeCount, updated)
		}
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <map> <title>",
	Short: "Change a map's title",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		m, err := ResolveMap(d, args[0])
		if err != nil {
			return err
		}
		if err := d.RenameMap(m.ID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s: %s -> %s\n", shortID(m.ID), m.Title, args[1])
		return nil
	},
}

var deleteMapCmd = &cobra.Command{
	Use:   "delete-map <map>",
	Short: "Delete a map and all its nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		m, err := ResolveMap(d, args[0])
		if err != nil {
			return err
		}
		if err := d.DeleteMap(m.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s  %s (%d nodes)\n", shortID(m.ID), m.Title, m.NodeCount)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTitle, "title", "", "Map title (default: document title or file name)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteMapCmd)
}
