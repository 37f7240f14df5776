package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/narrative"
	"hostel-mcp/internal/report"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatch_OrderedOutput(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.json", `{"data":{"labels":["2024-01-05","2024-01-06"],"on_leave":[80,90]}}`),
		writeFile(t, dir, "b.json", `{"data":{"labels":["2024-01-05"],"on_leave":[1,2]}}`),
		filepath.Join(dir, "missing.json"),
		writeFile(t, dir, "c.json", `{"data":{"labels":["2024-01-05"],"on_leave":[3]}}`),
	}

	b := batch{kind: analysis.OnLeave, synth: narrative.New(narrative.DefaultThresholds()), concurrency: 2}
	entries, err := b.run(context.Background(), files)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(entries) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(entries))
	}
	for i, e := range entries {
		if e.File != files[i] {
			t.Errorf("entry %d: expected %s, got %s", i, files[i], e.File)
		}
	}

	if entries[0].Error != "" || !strings.Contains(entries[0].Summary.String(), "Fridays and Saturdays") {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Error == "" || !entries[1].Summary.Failed() {
		t.Errorf("expected validation error for b.json, got %+v", entries[1])
	}
	if entries[2].Error == "" || entries[2].Report != nil {
		t.Errorf("expected read error for missing file, got %+v", entries[2])
	}

	var buf bytes.Buffer
	if err := writeEntries(&buf, entries); err != nil {
		t.Fatalf("writeEntries failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(files) {
		t.Fatalf("expected one line per file, got %d", len(lines))
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line %q: %v", lines[0], err)
	}
	for _, key := range []string{"file", "report", "summary"} {
		if _, ok := first[key]; !ok {
			t.Errorf("expected key %q in %s", key, lines[0])
		}
	}
}

func TestBatch_WritesHTML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "march.json", `{"data":{"labels":["2024-03-01","2024-03-02"],"late_checked_in":[2,0]}}`)
	out := filepath.Join(dir, "html")

	b := batch{kind: analysis.LateCheckins, synth: narrative.New(narrative.DefaultThresholds()), concurrency: 1, htmlDir: out, charts: true}
	entries, err := b.run(context.Background(), []string{file})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if entries[0].HTML != filepath.Join(out, report.HTMLFileName(file, analysis.LateCheckins)) {
		t.Errorf("unexpected html path %q", entries[0].HTML)
	}
	if _, err := os.Stat(entries[0].HTML); err != nil {
		t.Errorf("expected html report on disk: %v", err)
	}
}

func TestBatch_HTMLSameBaseNameDifferentDirectories(t *testing.T) {
	root := t.TempDir()
	body := `{"data":{"labels":["2024-03-01"],"on_leave":[4]}}`
	var files []string
	for _, sub := range []string{"north", "south"} {
		dir := filepath.Join(root, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		files = append(files, writeFile(t, dir, "week.json", body))
	}

	b := batch{kind: analysis.OnLeave, synth: narrative.New(narrative.DefaultThresholds()), concurrency: 2, htmlDir: filepath.Join(root, "html")}
	entries, err := b.run(context.Background(), files)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if entries[0].HTML == entries[1].HTML {
		t.Fatalf("expected distinct pages, both wrote %s", entries[0].HTML)
	}
	for _, e := range entries {
		if _, err := os.Stat(e.HTML); err != nil {
			t.Errorf("expected html report on disk: %v", err)
		}
	}
}
