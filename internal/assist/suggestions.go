package assist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadSuggestions reads suggestions from a file path, or stdin if source is "-".
func ReadSuggestions(source string) ([]Suggestion, error) {
	var reader io.Reader
	if source == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read suggestion source '%s': %w", source, err)
		}
		defer f.Close()
		reader = f
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading suggestions: %w", err)
	}

	suggestions, err := parseSuggestionContent(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", source, err)
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("no suggestions found in '%s' (blank lines and # comments ignored)", source)
	}
	return suggestions, nil
}

// parseSuggestionContent parses "parent-id: label" entries.
// If "---" delimiters are present, each section is one suggestion whose first
// line names the parent and whose remaining lines continue the label.
// Otherwise, each non-blank, non-comment line is a separate suggestion.
func parseSuggestionContent(content string) ([]Suggestion, error) {
	lines := strings.Split(content, "\n")

	hasDelimiter := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "---" {
			hasDelimiter = true
			break
		}
	}

	if hasDelimiter {
		var out []Suggestion
		var section []string
		flush := func() error {
			s, ok, err := parseSection(section)
			section = nil
			if err != nil {
				return err
			}
			if ok {
				out = append(out, s)
			}
			return nil
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "---" {
				if err := flush(); err != nil {
					return nil, err
				}
				continue
			}
			section = append(section, line)
		}
		if err := flush(); err != nil {
			return nil, err
		}
		return out, nil
	}

	var out []Suggestion
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, s)
	}
	return out, scanner.Err()
}

// parseSection turns one delimited block into a suggestion. Comment and
// blank lines before the header are skipped; inside the label they are kept
// except for trailing blanks.
func parseSection(lines []string) (Suggestion, bool, error) {
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		start = i
		break
	}
	if start < 0 {
		return Suggestion{}, false, nil
	}

	s, err := parseLine(strings.TrimSpace(lines[start]))
	if err != nil {
		return Suggestion{}, false, err
	}
	rest := strings.TrimRight(strings.Join(lines[start+1:], "\n"), " \t\n")
	switch {
	case s.Label == "":
		s.Label = strings.TrimSpace(rest)
	case rest != "":
		s.Label += "\n" + rest
	}
	return s, true, nil
}

func parseLine(line string) (Suggestion, error) {
	parent, label, ok := strings.Cut(line, ":")
	if !ok {
		return Suggestion{}, fmt.Errorf("expected 'parent-id: label', got %q", TruncateMiddle(line, 60))
	}
	parent = strings.TrimSpace(parent)
	if parent == "" {
		return Suggestion{}, fmt.Errorf("missing parent id in %q", TruncateMiddle(line, 60))
	}
	return Suggestion{ParentID: parent, Label: strings.TrimSpace(label)}, nil
}
