package assist

import "time"

// Suggestion is one (parent, label) pair proposed by a person or a generator
type Suggestion struct {
	ParentID string `json:"parent_id"`
	Label    string `json:"label"`
}

// GeneratorConfig holds parameters for running an external suggestion
// generator. Command runs through /bin/sh -c.
type GeneratorConfig struct {
	Command   string
	WorkDir   string
	Title     string
	Timeout   time.Duration
	MaxStderr int // bytes of stderr kept, 0 means 10KB
	Env       []string
}

// GeneratorResult captures what a generator run produced
type GeneratorResult struct {
	Suggestions []Suggestion
	Skipped     int // stdout lines that were not valid suggestions
	ExitCode    int
	Stderr      string // first MaxStderr bytes
	StderrLost  int    // bytes of stderr past the cap
	Duration    time.Duration
}

// ApplyResult is the outcome of routing one suggestion into the map
type ApplyResult struct {
	Suggestion Suggestion `json:"suggestion"`
	NodeID     string     `json:"node_id,omitempty"`
	Err        error      `json:"-"`
}
