package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/narrative"
)

const onLeaveBody = `{"data":{"labels":["2024-01-05","2024-01-06","2024-01-07"],"on_leave":[80,90,3]}}`

func TestBuild_Metric(t *testing.T) {
	o := Build(analysis.OnLeave, []byte(onLeaveBody), narrative.New(narrative.DefaultThresholds()), Options{Charts: true})
	if !o.OK() {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if o.Summary.Failed() {
		t.Fatalf("unexpected failed summary: %s", o.Summary)
	}
	if len(o.Charts) != 2 {
		t.Errorf("expected weekday and monthly charts, got %d", len(o.Charts))
	}

	raw, err := json.Marshal(o.Result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"total_on_leave":173`) {
		t.Errorf("unexpected report %s", raw)
	}
}

func TestBuild_LeaveTrendsWithoutCharts(t *testing.T) {
	body := `{"data":{"plannedUnplannedLeavesTrends":[{"date":"2024-03-01","urgent_count":1,"planned_count":3,"total_leaves":4,"urgent_percentage":25,"planned_percentage":75}]}}`
	o := Build(analysis.LeaveTrends, []byte(body), narrative.New(narrative.DefaultThresholds()), Options{})
	if !o.OK() {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if o.Charts != nil {
		t.Errorf("expected no charts when disabled")
	}
	if !strings.HasPrefix(o.Summary.String(), "A total of 4 leaves were recorded") {
		t.Errorf("unexpected narrative %q", o.Summary)
	}
}

func TestBuild_ErrorPassesThrough(t *testing.T) {
	o := Build(analysis.NonCheckedIn, []byte(`{"data":{"labels":["2024-01-01"]}}`), narrative.New(narrative.DefaultThresholds()), Options{Charts: true})
	if o.OK() {
		t.Fatal("expected failure")
	}
	if !analysis.IsValidation(o.Err) {
		t.Errorf("expected ValidationError, got %v", o.Err)
	}
	if !o.Summary.Failed() || o.Summary.String() != o.Err.Error() {
		t.Errorf("expected the summary to carry the analysis error, got %q", o.Summary)
	}
	if o.Charts != nil {
		t.Errorf("expected no charts on failure")
	}
}

func TestWriteHTML(t *testing.T) {
	o := Build(analysis.OnLeave, []byte(onLeaveBody), narrative.New(narrative.DefaultThresholds()), Options{Charts: true})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, "jan.json", o); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<p>Students frequently take leave on Fridays and Saturdays") {
		t.Errorf("expected narrative paragraphs in page")
	}
	if !strings.Contains(html, `<pre class="mermaid">xychart-beta`) {
		t.Errorf("expected unfenced mermaid chart in page")
	}
	if strings.Contains(html, "```") {
		t.Errorf("expected markdown fences to be stripped")
	}
}

func TestWriteHTMLFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	o := Build(analysis.OnLeave, []byte(`{}`), narrative.New(narrative.DefaultThresholds()), Options{})

	path, err := WriteHTMLFile(dir, "/data/feb.json", o)
	if err != nil {
		t.Fatalf("WriteHTMLFile failed: %v", err)
	}
	if filepath.Base(path) != HTMLFileName("/data/feb.json", analysis.OnLeave) {
		t.Errorf("unexpected file name %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "feb-on_leave-") {
		t.Errorf("expected base name and kind in %s", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(content), `class="error"`) {
		t.Errorf("expected error section for a failed analysis")
	}
}

func TestHTMLFileName_DistinctPerSourcePath(t *testing.T) {
	a := HTMLFileName("/data/2024/feb.json", analysis.OnLeave)
	b := HTMLFileName("/data/2025/feb.json", analysis.OnLeave)
	if a == b {
		t.Errorf("expected distinct names for same base in different directories, got %s", a)
	}
	if again := HTMLFileName("/data/2024/feb.json", analysis.OnLeave); again != a {
		t.Errorf("expected stable name, got %s and %s", a, again)
	}
	if !strings.HasSuffix(a, ".html") || !strings.HasPrefix(a, "feb-on_leave-") {
		t.Errorf("unexpected name %s", a)
	}
}
