package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkmap/internal/config"
	"inkmap/internal/db"
	"inkmap/internal/mindmap"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "inkmap",
	Short:         "Two-sided mind-map layout, editing and suggestions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		l, err := cfg.Log.NewLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("configuration loaded", zap.Strings("sources", cfg.LoadedFrom))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .inkmap.db database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default $INKMAP_CONFIG or ~/.config/inkmap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

const dbFileName = ".inkmap.db"

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("INKMAP_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	if xdgPath := xdgDBPath(); xdgPath != "" {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no %s found (set INKMAP_DB, use --db, or run 'inkmap import' to create one)", dbFileName)
}

func xdgDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "inkmap", "inkmap.db")
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	logger.Debug("opening database", zap.String("path", path))
	return db.OpenDB(path)
}

// OpenOrCreateDatabase opens the discovered database, or creates one at the
// --db path (or ./.inkmap.db) when none exists yet.
func OpenOrCreateDatabase() (*db.DB, error) {
	if path, err := DiscoverDB(); err == nil {
		return db.OpenDB(path)
	}
	path := dbPath
	if path == "" {
		path = dbFileName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	logger.Info("creating database", zap.String("path", path))
	return db.OpenDB(path)
}

// ResolveMap finds a mind-map by full ID, ID prefix, or title search.
func ResolveMap(d *db.DB, reference string) (*db.Map, error) {
	// 1. Exact ID match
	m, err := d.GetMap(reference)
	if err == nil {
		return m, nil
	}

	// 2. ID prefix match (≥6 hex/dash chars)
	if len(reference) >= 6 && isHexDash(reference) {
		matches, err := d.SearchMapsByIDPrefix(reference, 10)
		if err == nil {
			switch len(matches) {
			case 1:
				return &matches[0], nil
			case 0:
				// fall through to title search
			default:
				return nil, ambiguous(reference, mapLines(matches), "map ID")
			}
		}
	}

	// 3. Title search
	matches, err := d.SearchMapsByTitle(reference)
	if err == nil {
		for i := range matches {
			if strings.EqualFold(matches[i].Title, reference) {
				return &matches[i], nil
			}
		}
		switch len(matches) {
		case 1:
			return &matches[0], nil
		case 0:
		default:
			return nil, ambiguous(reference, mapLines(matches), "map ID")
		}
	}

	return nil, fmt.Errorf("map not found: %s", reference)
}

// ResolveNodeID finds a node by full ID, ID prefix (≥6 chars), or label.
func ResolveNodeID(nodes []mindmap.Node, reference string) (string, error) {
	for _, n := range nodes {
		if n.ID == reference {
			return n.ID, nil
		}
	}

	if len(reference) >= 6 {
		var matches []mindmap.Node
		for _, n := range nodes {
			if strings.HasPrefix(n.ID, reference) {
				matches = append(matches, n)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0].ID, nil
		case 0:
		default:
			return "", ambiguous(reference, nodeLines(matches), "node ID")
		}
	}

	var matches []mindmap.Node
	for _, n := range nodes {
		if strings.EqualFold(strings.TrimSpace(n.Label), strings.TrimSpace(reference)) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return "", fmt.Errorf("node not found: %s: %w", reference, mindmap.ErrNodeNotFound)
	default:
		return "", ambiguous(reference, nodeLines(matches), "node ID")
	}
}

func ambiguous(reference string, lines []string, use string) error {
	if len(lines) > 10 {
		lines = lines[:10]
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full %s instead.",
		reference, len(lines), strings.Join(lines, "\n"), use)
}

func mapLines(maps []db.Map) []string {
	lines := make([]string, len(maps))
	for i, m := range maps {
		lines[i] = fmt.Sprintf("  %s %s", shortID(m.ID), m.Title)
	}
	return lines
}

func nodeLines(nodes []mindmap.Node) []string {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = fmt.Sprintf("  %s %s", shortID(n.ID), n.Label)
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}
