package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"hostel-mcp/internal/series"
)

func metricBody(column string, labels []string, values []float64) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"labels": labels,
			column:   values,
		},
	})
	return body
}

var eightDays = []string{
	"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
	"2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08",
}

func TestAnalyzeOnLeave_BasicStatistics(t *testing.T) {
	values := []float64{0, 3, 2, 0, 5, 6, 1, 0}
	res := AnalyzeOnLeave(metricBody("on_leave", eightDays, values))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	s := res.Report.BasicStatistics

	if s.Total != 17 {
		t.Errorf("expected total 17, got %d", s.Total)
	}
	if s.DaysWithNonzero != 5 {
		t.Errorf("expected 5 nonzero days, got %d", s.DaysWithNonzero)
	}
	if s.MaxConsecutiveDays != 3 {
		t.Errorf("expected streak 3, got %d", s.MaxConsecutiveDays)
	}
	// 17/8 = 2.125 is an exact tie and rounds to the even digit.
	if s.Frequency.DailyAvg != 2.12 {
		t.Errorf("expected daily avg 2.12, got %v", s.Frequency.DailyAvg)
	}
	// Week ending 2024-01-07 sums to 17, week ending 2024-01-14 holds a single zero.
	if s.Frequency.WeeklyAvg != 8.5 {
		t.Errorf("expected weekly avg 8.5, got %v", s.Frequency.WeeklyAvg)
	}
}

func TestAnalyzeOnLeave_TemporalAndEvents(t *testing.T) {
	values := []float64{0, 3, 2, 0, 5, 6, 1, 0}
	res := AnalyzeOnLeave(metricBody("on_leave", eightDays, values))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	r := res.Report

	daily := r.TemporalPatterns.DailyDistribution
	if len(daily) != 7 {
		t.Errorf("expected 7 weekdays, got %v", daily)
	}
	if daily["Saturday"] != 6 || daily["Monday"] != 0 || daily["Tuesday"] != 3 {
		t.Errorf("unexpected daily distribution %v", daily)
	}
	if len(r.TemporalPatterns.MonthlyTrend) != 1 || r.TemporalPatterns.MonthlyTrend["2024-01"] != 17 {
		t.Errorf("unexpected monthly trend %v", r.TemporalPatterns.MonthlyTrend)
	}

	if r.Anomalies.Threshold != 8.75 {
		t.Errorf("expected threshold 8.75, got %v", r.Anomalies.Threshold)
	}
	if len(r.Anomalies.AnomalousDates) != 0 {
		t.Errorf("expected no anomalies, got %v", r.Anomalies.AnomalousDates)
	}

	if r.SignificantEvents.MostSevereDay != "2024-01-06" {
		t.Errorf("expected peak 2024-01-06, got %s", r.SignificantEvents.MostSevereDay)
	}
	if r.SignificantEvents.RecentOccurrence == nil || *r.SignificantEvents.RecentOccurrence != "2024-01-07" {
		t.Errorf("expected recent occurrence 2024-01-07, got %v", r.SignificantEvents.RecentOccurrence)
	}
}

func TestAnalyzeMetric_TotalMatchesSum(t *testing.T) {
	inputs := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{0, 0, 0, 9, 0, 0, 0, 1},
		{10, 0, 10, 0, 10, 0, 10, 0},
	}
	for _, values := range inputs {
		res := AnalyzeNonCheckedIn(metricBody("non_checked_in", eightDays, values))
		if !res.OK() {
			t.Fatalf("unexpected error: %v", res.Err)
		}

		sum, nonzero := 0, 0
		for _, v := range values {
			sum += int(v)
			if v > 0 {
				nonzero++
			}
		}
		if res.Report.BasicStatistics.Total != sum {
			t.Errorf("%v: total %d, want %d", values, res.Report.BasicStatistics.Total, sum)
		}
		if res.Report.BasicStatistics.DaysWithNonzero != nonzero {
			t.Errorf("%v: nonzero %d, want %d", values, res.Report.BasicStatistics.DaysWithNonzero, nonzero)
		}
	}
}

func TestAnalyzeMetric_RejectsOversizedValues(t *testing.T) {
	res := AnalyzeOnLeave(metricBody("on_leave", []string{"2024-01-01", "2024-01-02"}, []float64{1e19, 1}))
	if res.OK() {
		t.Fatalf("expected error, got total %d", res.Report.BasicStatistics.Total)
	}
	if !IsValidation(res.Err) {
		t.Errorf("expected validation error, got %v", res.Err)
	}
}

func TestNewMetricReport_TotalOverflow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := series.Metric{Name: "on_leave", Points: make([]series.Point, 10000)}
	for i := range m.Points {
		m.Points[i] = series.Point{Date: start, Value: series.MaxValue}
	}

	_, err := NewMetricReport(OnLeave, m)
	if err == nil || !strings.Contains(err.Error(), "overflows") {
		t.Fatalf("expected overflow error, got %v", err)
	}

	res := guardedReport(m)
	var cerr *ComputationError
	if !errors.As(res.Err, &cerr) {
		t.Errorf("expected ComputationError, got %v", res.Err)
	}
}

func guardedReport(m series.Metric) Result[MetricReport] {
	return guard("on_leave", func() (*MetricReport, error) {
		return NewMetricReport(OnLeave, m)
	})
}

func TestAnalyzeMetric_Anomalies(t *testing.T) {
	labels := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	res := AnalyzeLateCheckins(metricBody("late_checked_in", labels, []float64{1, 2, 3, 4, 100}))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	a := res.Report.Anomalies
	if a.Threshold != 7 {
		t.Errorf("expected threshold 7, got %v", a.Threshold)
	}
	if len(a.AnomalousDates) != 1 || a.AnomalousDates[0] != "2024-01-05" || a.Values[0] != 100 {
		t.Errorf("unexpected anomalies %+v", a)
	}
}

func TestAnalyzeMetric_PeakTiesGoToEarliestDate(t *testing.T) {
	res := AnalyzeOnLeave(metricBody("on_leave", []string{"2024-01-01", "2024-01-02", "2024-01-03"}, []float64{5, 1, 5}))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := res.Report.SignificantEvents.MostSevereDay; got != "2024-01-01" {
		t.Errorf("expected 2024-01-01, got %s", got)
	}

	// Input order is kept, but the tie still resolves to the earlier calendar date.
	res = AnalyzeOnLeave(metricBody("on_leave", []string{"2024-01-03", "2024-01-02"}, []float64{5, 5}))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := res.Report.SignificantEvents.MostSevereDay; got != "2024-01-02" {
		t.Errorf("expected 2024-01-02, got %s", got)
	}
}

func TestAnalyzeMetric_AllZeros(t *testing.T) {
	res := AnalyzeLateCheckins(metricBody("late_checked_in", eightDays, make([]float64, 8)))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Report.SignificantEvents.RecentOccurrence != nil {
		t.Errorf("expected null recent occurrence, got %v", *res.Report.SignificantEvents.RecentOccurrence)
	}
	if len(res.Report.Anomalies.Values) != 0 {
		t.Errorf("expected no anomalies on a constant series")
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(out, []byte(`"recent_occurrence":null`)) {
		t.Errorf("expected null recent_occurrence in %s", out)
	}
	if !bytes.Contains(out, []byte(`"anomalous_dates":[]`)) {
		t.Errorf("expected empty anomalous_dates array in %s", out)
	}
}

func TestBasicStatistics_FieldNames(t *testing.T) {
	tests := []struct {
		kind   Kind
		column string
		keys   []string
	}{
		{LateCheckins, "late_checked_in", []string{`"total_late_checkins"`, `"days_with_late_checkins"`, `"checkin_frequency"`}},
		{OnLeave, "on_leave", []string{`"total_on_leave"`, `"days_with_leaves"`, `"leave_frequency"`}},
		{NonCheckedIn, "non_checked_in", []string{`"total_non_checked_in"`, `"days_with_non_checked_in"`, `"leave_frequency"`}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			res := AnalyzeMetric(tt.kind, metricBody(tt.column, eightDays, []float64{1, 0, 1, 0, 1, 0, 1, 0}))
			out, err := json.Marshal(res)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for _, key := range append(tt.keys, `"max_consecutive_days"`, `"weekly_avg"`) {
				if !strings.Contains(string(out), key) {
					t.Errorf("expected key %s in %s", key, out)
				}
			}
		})
	}
}

func TestAnalyzeMetric_ErrorsBecomeErrorObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed", `{"data":`},
		{"Mismatch", `{"data":{"labels":["2024-01-01"],"on_leave":[1,2]}}`},
		{"Empty", `{"data":{"labels":[],"on_leave":[]}}`},
		{"BadDate", `{"data":{"labels":["soon"],"on_leave":[1]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AnalyzeOnLeave([]byte(tt.body))
			if res.OK() {
				t.Fatal("expected failure")
			}
			if !IsValidation(res.Err) {
				t.Errorf("expected ValidationError, got %T: %v", res.Err, res.Err)
			}

			out, err := json.Marshal(res)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var decoded map[string]string
			if err := json.Unmarshal(out, &decoded); err != nil {
				t.Fatalf("expected an error object, got %s", out)
			}
			if decoded["error"] == "" || len(decoded) != 1 {
				t.Errorf("expected {\"error\": msg}, got %s", out)
			}
		})
	}
}

func TestAnalyzeMetric_LeaveTrendsIsNotSingleColumn(t *testing.T) {
	res := AnalyzeMetric(LeaveTrends, []byte(`{"data":{}}`))
	if res.OK() {
		t.Fatal("expected failure")
	}
	if IsValidation(res.Err) {
		t.Errorf("expected a ComputationError, got %v", res.Err)
	}
}

func TestAnalyzeMetric_Deterministic(t *testing.T) {
	body := metricBody("on_leave", eightDays, []float64{4, 0, 7, 1, 30, 2, 2, 9})

	first, err := json.Marshal(AnalyzeOnLeave(body))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(AnalyzeOnLeave(body))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("reports differ:\n%s\n%s", first, second)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("attendance"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
