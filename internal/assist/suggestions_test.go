package assist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suggestions.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSuggestions_Lines(t *testing.T) {
	path := writeFile(t, `# ideas for the trip
root: Packing list

A: Tent
A:   Sleeping bag  
`)
	got, err := ReadSuggestions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Suggestion{
		{ParentID: "root", Label: "Packing list"},
		{ParentID: "A", Label: "Tent"},
		{ParentID: "A", Label: "Sleeping bag"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadSuggestions_LabelMayContainColons(t *testing.T) {
	got, err := ReadSuggestions(writeFile(t, "root: Time: 10:30\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Label != "Time: 10:30" {
		t.Errorf("got label %q", got[0].Label)
	}
}

func TestReadSuggestions_MultiLine(t *testing.T) {
	path := writeFile(t, `---
# first block
root: Budget
fuel and food
---
A:
Pack light,
then pack lighter
---
`)
	got, err := ReadSuggestions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(got), got)
	}
	if got[0].ParentID != "root" || got[0].Label != "Budget\nfuel and food" {
		t.Errorf("block 1: got %+v", got[0])
	}
	if got[1].ParentID != "A" || got[1].Label != "Pack light,\nthen pack lighter" {
		t.Errorf("block 2: got %+v", got[1])
	}
}

func TestReadSuggestions_Empty(t *testing.T) {
	_, err := ReadSuggestions(writeFile(t, "# nothing\n\n"))
	if err == nil {
		t.Fatal("expected error for empty suggestion file")
	}
	if !strings.Contains(err.Error(), "no suggestions found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadSuggestions_Malformed(t *testing.T) {
	_, err := ReadSuggestions(writeFile(t, "root: ok\njust a label\n"))
	if err == nil {
		t.Fatal("expected error for line without parent")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line, got: %v", err)
	}

	_, err = ReadSuggestions(writeFile(t, ": orphan label\n"))
	if err == nil || !strings.Contains(err.Error(), "missing parent id") {
		t.Errorf("expected missing parent error, got: %v", err)
	}
}

func TestReadSuggestions_NonExistent(t *testing.T) {
	_, err := ReadSuggestions(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
