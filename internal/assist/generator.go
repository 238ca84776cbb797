package assist

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inkmap/internal/mindmap"
)

const defaultStderrLimit = 10 * 1024

// RunGenerator runs the configured command, writes the current map as JSON
// to its stdin and collects JSON-lines suggestions from its stdout:
//
//	{"parent_id": "...", "label": "..."}
//
// Lines that are not suggestions are counted and skipped. A non-zero exit is
// reported in the result, not as an error; a timeout is an error.
func RunGenerator(ctx context.Context, config GeneratorConfig, nodes []mindmap.Node, logger *zap.Logger) (*GeneratorResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(config.Command) == "" {
		return nil, errors.New("no generator command configured")
	}

	input, err := json.Marshal(mindmap.Document{Title: config.Title, Nodes: nodes})
	if err != nil {
		return nil, fmt.Errorf("encoding map: %w", err)
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", config.Command)
	if config.WorkDir != "" {
		cmd.Dir = config.WorkDir
	}
	cmd.Env = append(os.Environ(), config.Env...)
	// SIGTERM first; Wait escalates to SIGKILL after WaitDelay.
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = 3 * time.Second
	cmd.Stdin = bytes.NewReader(input)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	var stderrBuf cappedBuffer
	stderrBuf.limit = config.MaxStderr
	if stderrBuf.limit <= 0 {
		stderrBuf.limit = defaultStderrLimit
	}
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting generator: %w", err)
	}
	logger.Debug("generator started",
		zap.String("command", TruncateMiddle(config.Command, 80)),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("nodes", len(nodes)),
	)

	waitErr := cmd.Wait()
	result := parseSuggestionStream(&stdout, logger)
	result.Duration = time.Since(start)
	result.Stderr = stderrBuf.String()
	result.StderrLost = stderrBuf.Dropped()

	if ctx.Err() != nil {
		return result, fmt.Errorf("generator stopped after %s: %w",
			FormatDuration(result.Duration), ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("waiting for generator: %w", waitErr)
		}
	}

	logger.Debug("generator finished",
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Int("skipped", result.Skipped),
		zap.Int("exitCode", result.ExitCode),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// parseSuggestionStream reads JSON-lines suggestions until EOF
func parseSuggestionStream(r io.Reader, logger *zap.Logger) *GeneratorResult {
	result := &GeneratorResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var s Suggestion
		if err := json.Unmarshal([]byte(line), &s); err != nil || s.ParentID == "" {
			result.Skipped++
			logger.Debug("skipping generator line", zap.String("line", TruncateMiddle(line, 120)))
			continue
		}
		s.ParentID = strings.TrimSpace(s.ParentID)
		s.Label = strings.TrimSpace(s.Label)
		result.Suggestions = append(result.Suggestions, s)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("reading generator output", zap.Error(err))
	}
	return result
}
