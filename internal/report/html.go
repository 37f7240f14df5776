package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hostel-mcp/internal/analysis"

	"github.com/google/uuid"
)

const mermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; color: #222; }
.narrative p { margin: 0.4rem 0; }
.error { color: #b00020; }
pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Source: <code>{{.Source}}</code></p>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
<section class="narrative">
{{range .Sentences}}<p>{{.}}</p>
{{end}}</section>
{{range .Charts}}<pre class="mermaid">{{.}}</pre>
{{end}}{{end}}
<h2>Report</h2>
<pre>{{.ReportJSON}}</pre>
{{if .Charts}}<script src="{{.MermaidScript}}"></script>
<script>mermaid.initialize({ startOnLoad: true });</script>{{end}}
</body>
</html>
`))

type pageData struct {
	Title         string
	Source        string
	Error         string
	Sentences     []string
	Charts        []string
	ReportJSON    string
	MermaidScript string
}

// WriteHTML renders o as a standalone HTML page.
func WriteHTML(w io.Writer, source string, o Outcome) error {
	raw, err := json.MarshalIndent(o.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	data := pageData{
		Title:         fmt.Sprintf("Attendance report: %s", o.Kind),
		Source:        source,
		ReportJSON:    string(raw),
		MermaidScript: mermaidScript,
	}
	if o.Summary.Failed() {
		data.Error = o.Summary.String()
	} else {
		data.Sentences = strings.Split(o.Summary.String(), "\n")
		for _, c := range o.Charts {
			data.Charts = append(data.Charts, stripFence(c))
		}
	}

	return page.Execute(w, data)
}

// WriteHTMLFile renders o into dir and returns the page path. The name is
// <base>-<kind>-<id>.html, where id is derived from the absolute source path, so
// inputs sharing a base name in different directories get distinct pages.
func WriteHTMLFile(dir, source string, o Outcome) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, HTMLFileName(source, o.Kind))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report %q: %w", path, err)
	}
	defer f.Close()

	if err := WriteHTML(f, source, o); err != nil {
		return "", err
	}
	return path, f.Close()
}

// HTMLFileName returns the page name WriteHTMLFile uses for source and kind.
func HTMLFileName(source string, kind analysis.Kind) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = filepath.Clean(source)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s-%s-%s.html", base, kind, id.String()[:8])
}

// stripFence removes the markdown code fence around a Mermaid chart.
func stripFence(chart string) string {
	chart = strings.TrimPrefix(chart, "```mermaid\n")
	return strings.TrimSuffix(chart, "```")
}
