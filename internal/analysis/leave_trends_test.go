package analysis

import (
	"bytes"
	"encoding/json"
	"testing"
)

type leaveRow struct {
	Date              string  `json:"date"`
	UrgentCount       float64 `json:"urgent_count"`
	PlannedCount      float64 `json:"planned_count"`
	TotalLeaves       float64 `json:"total_leaves"`
	UrgentPercentage  float64 `json:"urgent_percentage"`
	PlannedPercentage float64 `json:"planned_percentage"`
}

func leaveBody(rows ...leaveRow) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"plannedUnplannedLeavesTrends": rows,
		},
	})
	return body
}

func proportionalRows() []leaveRow {
	return []leaveRow{
		{"2024-03-04", 3, 6, 9, 33.33, 66.67},
		{"2024-03-01", 1, 2, 3, 33.33, 66.67},
		{"2024-03-02", 2, 4, 6, 33.33, 66.67},
		{"2024-04-05", 4, 8, 12, 33.33, 66.67},
	}
}

func TestAnalyzeLeaveTrends_Correlation(t *testing.T) {
	res := AnalyzeLeaveTrends(leaveBody(proportionalRows()...))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	c := res.Report.CorrelationAnalysis
	for name, v := range map[string]*float64{
		"urgent_vs_planned": c.UrgentVsPlanned,
		"urgent_vs_total":   c.UrgentVsTotal,
		"planned_vs_total":  c.PlannedVsTotal,
	} {
		if v == nil || *v != 1.0 {
			t.Errorf("%s: expected 1.0, got %v", name, v)
		}
	}
}

func TestAnalyzeLeaveTrends_BasicStatsAndPatterns(t *testing.T) {
	res := AnalyzeLeaveTrends(leaveBody(proportionalRows()...))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	r := res.Report

	b := r.BasicStats
	if b.TotalLeaves != 30 || b.AvgDailyLeaves != 7.5 {
		t.Errorf("unexpected totals %+v", b)
	}
	if b.MaxLeavesDay.Date != "2024-04-05" || b.MaxLeavesDay.Count != 12 {
		t.Errorf("unexpected max day %+v", b.MaxLeavesDay)
	}
	if b.UrgentLeaves.Total != 10 || b.UrgentLeaves.DailyAvg != 2.5 || b.UrgentLeaves.MaxDay != "2024-04-05" {
		t.Errorf("unexpected urgent stats %+v", b.UrgentLeaves)
	}
	if b.PlannedLeaves.Total != 20 || b.PlannedLeaves.DailyAvg != 5 {
		t.Errorf("unexpected planned stats %+v", b.PlannedLeaves)
	}

	p := r.TemporalPatterns.DailyPatterns
	// 2024-03-01 and 2024-04-05 are Fridays.
	if p.ByWeekday["planned_count"]["Friday"] != 10 || p.ByWeekday["urgent_count"]["Saturday"] != 2 {
		t.Errorf("unexpected weekday patterns %v", p.ByWeekday)
	}
	if len(p.ByMonth) != 2 {
		t.Fatalf("expected two months, got %v", p.ByMonth)
	}
	if p.ByMonth["2024-03"]["planned_count"] != 12 || p.ByMonth["2024-04"]["urgent_count"] != 4 {
		t.Errorf("unexpected monthly patterns %v", p.ByMonth)
	}

	if got := r.DerivedRatios.Dates[0]; got != "2024-03-01" {
		t.Errorf("expected rows sorted by date, first ratio date %s", got)
	}
	if eff := r.DerivedRatios.PlanningEfficiency.Mean; eff != 0.6667 {
		t.Errorf("expected planning efficiency 0.6667, got %v", eff)
	}
}

func TestAnalyzeLeaveTrends_UnexpectedUrgentEvents(t *testing.T) {
	res := AnalyzeLeaveTrends(leaveBody(
		leaveRow{"2024-05-01", 4, 0, 4, 100.0, 0},
		leaveRow{"2024-05-02", 5, 5, 10, 50, 50},
		leaveRow{"2024-05-03", 1, 4, 5, 20, 80},
	))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	e := res.Report.SignificantEvents

	if len(e.MostUnexpectedUrgent) != 1 {
		t.Fatalf("expected exactly one unexpected event, got %+v", e.MostUnexpectedUrgent)
	}
	ev := e.MostUnexpectedUrgent[0]
	if ev.Date != "2024-05-01" || ev.UrgentPercentage != 100.0 || ev.TotalLeaves != 4 {
		t.Errorf("unexpected event %+v", ev)
	}
	if e.HighestUrgentPercentage.Date != "2024-05-01" || e.HighestUrgentPercentage.TotalLeaves != 4 {
		t.Errorf("unexpected highest urgent %+v", e.HighestUrgentPercentage)
	}
	if e.HighestPlannedPercentage.Date != "2024-05-03" || e.HighestPlannedPercentage.Percentage != 80 {
		t.Errorf("unexpected highest planned %+v", e.HighestPlannedPercentage)
	}

	d := res.Report.PercentageDistribution
	if d.UrgentPercentage.Mean != 56.67 {
		t.Errorf("expected urgent mean 56.67, got %v", d.UrgentPercentage.Mean)
	}
	if d.UrgentPercentage.StdDev == nil || *d.UrgentPercentage.StdDev != 40.41 {
		t.Errorf("expected urgent std 40.41, got %v", d.UrgentPercentage.StdDev)
	}
}

func TestAnalyzeLeaveTrends_SingleRow(t *testing.T) {
	res := AnalyzeLeaveTrends(leaveBody(leaveRow{"2024-05-01", 0, 0, 0, 0, 0}))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	r := res.Report
	if r.CorrelationAnalysis.UrgentVsPlanned != nil {
		t.Errorf("expected undefined correlation for a single row")
	}
	if r.PercentageDistribution.UrgentPercentage.StdDev != nil {
		t.Errorf("expected undefined std for a single row")
	}
	if r.DerivedRatios.UrgentRatio.Values[0] != 0 || r.DerivedRatios.PlanningEfficiency.Values[0] != 0 {
		t.Errorf("expected zero ratios on a zero-leave day, got %+v", r.DerivedRatios)
	}
	if len(r.SignificantEvents.MostUnexpectedUrgent) != 0 {
		t.Errorf("expected no unexpected events")
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(out, []byte(`"urgent_vs_planned":null`)) {
		t.Errorf("expected null correlation in %s", out)
	}
	if !bytes.Contains(out, []byte(`"most_unexpected_urgent":[]`)) {
		t.Errorf("expected empty event list in %s", out)
	}
}

func TestAnalyzeLeaveTrends_Validation(t *testing.T) {
	for _, body := range []string{
		`{"data":{}}`,
		`{"data":{"plannedUnplannedLeavesTrends":[]}}`,
		`{"data":{"plannedUnplannedLeavesTrends":[{"date":"2024-01-01","urgent_count":"many","planned_count":1,"total_leaves":1,"urgent_percentage":0,"planned_percentage":100}]}}`,
	} {
		res := AnalyzeLeaveTrends([]byte(body))
		if res.OK() || !IsValidation(res.Err) {
			t.Errorf("expected ValidationError for %s, got %v", body, res.Err)
		}
	}
}

func TestAnalyzeLeaveTrends_Deterministic(t *testing.T) {
	body := leaveBody(proportionalRows()...)
	first, _ := json.Marshal(AnalyzeLeaveTrends(body))
	second, _ := json.Marshal(AnalyzeLeaveTrends(body))
	if !bytes.Equal(first, second) {
		t.Errorf("reports differ:\n%s\n%s", first, second)
	}
}
