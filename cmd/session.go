package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"inkmap/internal/db"
	"inkmap/internal/mindmap"
)

// mapSession is one stored mind-map opened for reading or editing. Every
// internal change the engine announces is written to the database and then
// acknowledged back to the engine, the way a host echoes a snapshot.
type mapSession struct {
	db     *db.DB
	m      *db.Map
	engine *mindmap.Engine

	saves   int
	saveErr error
}

func engineConfig() mindmap.Config {
	if cfg == nil {
		return mindmap.DefaultConfig()
	}
	return cfg.Mindmap()
}

func openSession(reference string) (*mapSession, error) {
	d, err := OpenDatabase()
	if err != nil {
		return nil, err
	}
	m, err := ResolveMap(d, reference)
	if err != nil {
		d.Close()
		return nil, err
	}
	s, err := newSession(d, m)
	if err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

func newSession(d *db.DB, m *db.Map) (*mapSession, error) {
	s := &mapSession{db: d, m: m}
	s.engine = mindmap.NewEngine(engineConfig(),
		mindmap.WithLogger(logger.With(zap.String("mapID", shortID(m.ID)))),
		mindmap.WithNodesChanged(s.persist),
	)
	nodes, err := mindmap.SnapshotFromDB(d, m.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.Load(nodes); err != nil {
		return nil, fmt.Errorf("map %s: %w", m.Title, err)
	}
	return s, nil
}

func (s *mapSession) persist(env mindmap.Envelope) {
	if s.saveErr != nil {
		return
	}
	if err := mindmap.SaveSnapshot(s.db, s.m.ID, env.Nodes); err != nil {
		s.saveErr = err
		return
	}
	s.saves++
	if _, err := s.engine.Receive(env); err != nil {
		s.saveErr = err
	}
}

// Err reports the first failed save
func (s *mapSession) Err() error {
	return s.saveErr
}

func (s *mapSession) Close() error {
	return s.db.Close()
}

// readDocument parses a JSON map document from a file, or stdin if path is "-"
func readDocument(path string) (*mindmap.Document, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc mindmap.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &doc, nil
}
