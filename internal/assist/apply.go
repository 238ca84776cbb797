package assist

import (
	"errors"

	"go.uber.org/zap"

	"inkmap/internal/mindmap"
)

// Adder is the engine operation suggestions are routed through
type Adder interface {
	AddChild(parentID, label string) (string, error)
}

// Apply adds every suggestion under its parent, in order. Each suggestion
// gets its own result; a suggestion whose parent does not exist is reported
// and skipped without stopping the rest.
func Apply(adder Adder, suggestions []Suggestion, logger *zap.Logger) []ApplyResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]ApplyResult, 0, len(suggestions))
	for _, s := range suggestions {
		id, err := adder.AddChild(s.ParentID, s.Label)
		if err != nil {
			if errors.Is(err, mindmap.ErrNodeNotFound) {
				logger.Warn("suggestion parent not found", zap.String("parentID", s.ParentID))
			} else {
				logger.Error("applying suggestion", zap.String("parentID", s.ParentID), zap.Error(err))
			}
			results = append(results, ApplyResult{Suggestion: s, Err: err})
			continue
		}
		results = append(results, ApplyResult{Suggestion: s, NodeID: id})
	}
	return results
}

// Applied counts the results that produced a node
func Applied(results []ApplyResult) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
