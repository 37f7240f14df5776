package report

import (
	"encoding/json"
	"errors"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/narrative"
	"hostel-mcp/internal/visuals"
)

// Outcome bundles everything one analysis run produces.
type Outcome struct {
	Kind    analysis.Kind
	Result  json.Marshaler
	Summary narrative.Summary
	Charts  []string
	Err     error
}

// OK reports whether the analysis produced a report.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Options controls the optional parts of an Outcome.
type Options struct {
	Charts bool
}

// Build runs the analysis of kind over body and synthesizes its narrative.
func Build(kind analysis.Kind, body []byte, synth *narrative.Synthesizer, opts Options) Outcome {
	if kind == analysis.LeaveTrends {
		res := analysis.AnalyzeLeaveTrends(body)
		o := Outcome{Kind: kind, Result: res, Summary: synth.LeaveTrends(res), Err: failure(res.OK(), res.ErrorMessage(), res.Err)}
		if opts.Charts && res.OK() {
			o.Charts = visuals.LeaveTrendCharts(res.Report)
		}
		return o
	}

	res := analysis.AnalyzeMetric(kind, body)
	o := Outcome{Kind: kind, Result: res, Summary: synth.Metric(kind, res), Err: failure(res.OK(), res.ErrorMessage(), res.Err)}
	if opts.Charts && res.OK() {
		o.Charts = visuals.MetricCharts(res.Report)
	}
	return o
}

func failure(ok bool, msg string, err error) error {
	if ok {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New(msg)
}
