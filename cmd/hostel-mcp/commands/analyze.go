package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/narrative"
	"hostel-mcp/internal/report"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeMetric string
	analyzeHTML   string
	analyzeOpen   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --metric <name> FILE...",
	Short: "Analyze request bodies stored on disk and print their reports and narratives",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := analysis.ParseKind(analyzeMetric)
		if err != nil {
			return err
		}
		if analyzeOpen && analyzeHTML == "" {
			analyzeHTML = cfg.ReportDir
		}

		ctx, stop := signalContext()
		defer stop()

		b := batch{
			kind:        kind,
			synth:       narrative.New(cfg.Thresholds),
			concurrency: cfg.AnalyzeConcurrency,
			htmlDir:     analyzeHTML,
			charts:      analyzeHTML != "" || cfg.EnableMermaidCharts,
		}
		entries, err := b.run(ctx, args)
		if err != nil {
			return err
		}
		if err := writeEntries(cmd.OutOrStdout(), entries); err != nil {
			return err
		}

		if analyzeOpen {
			for _, e := range entries {
				if e.HTML == "" {
					continue
				}
				if err := browser.OpenFile(e.HTML); err != nil {
					log.Warn().Err(err).Str("path", e.HTML).Msg("Failed to open report in browser")
				}
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeMetric, "metric", "m", "", "metric to analyze: late_checkins, on_leave, non_checked_in, leave_trends")
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "also write an HTML report per file into this directory")
	analyzeCmd.Flags().BoolVar(&analyzeOpen, "open", false, "open the HTML reports in the default browser")
	_ = analyzeCmd.MarkFlagRequired("metric")
}

// batchEntry is the per-file output line of the analyze command.
type batchEntry struct {
	File    string            `json:"file"`
	Report  json.Marshaler    `json:"report,omitempty"`
	Summary narrative.Summary `json:"summary"`
	HTML    string            `json:"html,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type batch struct {
	kind        analysis.Kind
	synth       *narrative.Synthesizer
	concurrency int
	htmlDir     string
	charts      bool
}

// run analyses every file concurrently and returns the entries in argument order.
// Unreadable files become error entries; a failure to write HTML aborts the batch.
func (b batch) run(ctx context.Context, files []string) ([]batchEntry, error) {
	entries := make([]batchEntry, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.concurrency))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			body, err := os.ReadFile(file)
			if err != nil {
				log.Warn().Err(err).Str("file", file).Msg("Failed to read input file")
				entries[i] = batchEntry{File: file, Summary: narrativeError(err), Error: err.Error()}
				return nil
			}

			o := report.Build(b.kind, body, b.synth, report.Options{Charts: b.charts})
			entry := batchEntry{File: file, Report: o.Result, Summary: o.Summary}
			if !o.OK() {
				entry.Error = o.Err.Error()
			}

			if b.htmlDir != "" {
				path, err := report.WriteHTMLFile(b.htmlDir, file, o)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				entry.HTML = path
			}

			log.Debug().Str("file", file).Str("metric", string(b.kind)).Bool("ok", o.OK()).Msg("Analyzed file")
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func narrativeError(err error) narrative.Summary {
	return narrative.Summary{Err: err.Error()}
}

func writeEntries(w io.Writer, entries []batchEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write result for %s: %w", e.File, err)
		}
	}
	return nil
}
