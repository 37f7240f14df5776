package narrative

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	summaryKey       = "Summary"
	legacySummaryKey = "summary"
)

// Summary is the outcome of a synthesizer: a narrative text, or the upstream
// analysis error passed through verbatim.
type Summary struct {
	Text string
	Err  string
	key  string
}

func newSummary(sentences []string) Summary {
	return Summary{Text: strings.Join(sentences, "\n"), key: summaryKey}
}

func failed(msg string) Summary {
	return Summary{Err: msg}
}

// Failed reports whether the summary carries an upstream error instead of text.
func (s Summary) Failed() bool {
	return s.Err != ""
}

// Key returns the JSON key the text is published under.
func (s Summary) Key() string {
	if s.key == "" {
		return summaryKey
	}
	return s.key
}

// String returns the narrative, or the error message for a failed summary.
func (s Summary) String() string {
	if s.Failed() {
		return s.Err
	}
	return s.Text
}

// MarshalJSON emits {"Summary": text}, or a bare JSON string for a failed summary.
func (s Summary) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return json.Marshal(s.Err)
	}
	return json.Marshal(map[string]string{s.Key(): s.Text})
}

// keysAbove returns the sorted keys whose value exceeds limit.
func keysAbove[V int | float64](m map[string]V, limit V) []string {
	var out []string
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if m[k] > limit {
			out = append(out, k)
		}
	}
	return out
}

// formatDecimal renders a float the way the report templates expect: integral
// values keep a trailing ".0".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
