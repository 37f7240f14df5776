package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"hostel-mcp/internal/series"
	"hostel-mcp/internal/stats"
)

// DateLayout is the wire format of every date in a report.
const DateLayout = "2006-01-02"

// Kind identifies one of the analysed attendance metrics.
type Kind string

const (
	LateCheckins Kind = "late_checkins"
	OnLeave      Kind = "on_leave"
	NonCheckedIn Kind = "non_checked_in"
	LeaveTrends  Kind = "leave_trends"
)

// Kinds lists every supported metric in a stable order.
var Kinds = []Kind{LateCheckins, OnLeave, NonCheckedIn, LeaveTrends}

// ParseKind resolves a metric name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

type statNames struct {
	column    string
	total     string
	days      string
	frequency string
}

var metricNames = map[Kind]statNames{
	LateCheckins: {"late_checked_in", "total_late_checkins", "days_with_late_checkins", "checkin_frequency"},
	OnLeave:      {"on_leave", "total_on_leave", "days_with_leaves", "leave_frequency"},
	NonCheckedIn: {"non_checked_in", "total_non_checked_in", "days_with_non_checked_in", "leave_frequency"},
}

// Column returns the request array name carrying the metric values, or "" for
// the multi-metric leave trends.
func (k Kind) Column() string {
	return metricNames[k].column
}

// Frequency holds the per-day and per-week averages.
type Frequency struct {
	DailyAvg  float64 `json:"daily_avg"`
	WeeklyAvg float64 `json:"weekly_avg"`
}

// BasicStatistics summarises one count column.
type BasicStatistics struct {
	Kind               Kind
	Total              int
	DaysWithNonzero    int
	MaxConsecutiveDays int
	Frequency          Frequency
}

// MarshalJSON uses the metric-specific field names of the report.
func (s BasicStatistics) MarshalJSON() ([]byte, error) {
	names, ok := metricNames[s.Kind]
	if !ok {
		return nil, fmt.Errorf("no statistics layout for metric %q", s.Kind)
	}
	freq, err := json.Marshal(s.Frequency)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{%q:%d,%q:%d,"max_consecutive_days":%d,%q:`,
		names.total, s.Total, names.days, s.DaysWithNonzero, s.MaxConsecutiveDays, names.frequency)
	buf.Write(freq)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TemporalPatterns groups a column by weekday name and by calendar month.
type TemporalPatterns struct {
	DailyDistribution map[string]float64 `json:"daily_distribution"`
	MonthlyTrend      map[string]int     `json:"monthly_trend"`
}

// AnomalyReport lists the rows above the IQR fence.
type AnomalyReport struct {
	Threshold      float64   `json:"threshold"`
	AnomalousDates []string  `json:"anomalous_dates"`
	Values         []float64 `json:"values"`
}

// SignificantEvents marks the peak day and the latest nonzero day.
type SignificantEvents struct {
	MostSevereDay    string  `json:"most_severe_day"`
	RecentOccurrence *string `json:"recent_occurrence"`
}

// MetricReport is the full analysis of a single-metric series.
type MetricReport struct {
	Kind              Kind              `json:"-"`
	BasicStatistics   BasicStatistics   `json:"basic_statistics"`
	TemporalPatterns  TemporalPatterns  `json:"temporal_patterns"`
	Anomalies         AnomalyReport     `json:"anomalies"`
	SignificantEvents SignificantEvents `json:"significant_events"`
}

// AnalyzeLateCheckins analyses the "late_checked_in" series of a request body.
func AnalyzeLateCheckins(body []byte) Result[MetricReport] {
	return AnalyzeMetric(LateCheckins, body)
}

// AnalyzeOnLeave analyses the "on_leave" series of a request body.
func AnalyzeOnLeave(body []byte) Result[MetricReport] {
	return AnalyzeMetric(OnLeave, body)
}

// AnalyzeNonCheckedIn analyses the "non_checked_in" series of a request body.
func AnalyzeNonCheckedIn(body []byte) Result[MetricReport] {
	return AnalyzeMetric(NonCheckedIn, body)
}

// AnalyzeMetric parses a labels/values request body and analyses the column of kind.
func AnalyzeMetric(kind Kind, body []byte) Result[MetricReport] {
	return guard(string(kind), func() (*MetricReport, error) {
		column := kind.Column()
		if column == "" {
			return nil, fmt.Errorf("metric %q is not a single-column series", kind)
		}
		m, err := series.BuildMetric(body, column)
		if err != nil {
			return nil, err
		}
		return NewMetricReport(kind, m)
	})
}

// NewMetricReport computes every section of the report from one series.
func NewMetricReport(kind Kind, m series.Metric) (*MetricReport, error) {
	if _, ok := metricNames[kind]; !ok {
		return nil, fmt.Errorf("metric %q is not a single-column series", kind)
	}
	if m.Len() == 0 {
		return nil, &ValidationError{Field: kind.Column(), Reason: "series is empty"}
	}

	values := m.Values()
	dates := m.Dates()

	basic, err := basicStatistics(kind, dates, values)
	if err != nil {
		return nil, err
	}
	patterns, err := temporalPatterns(dates, values)
	if err != nil {
		return nil, err
	}

	return &MetricReport{
		Kind:              kind,
		BasicStatistics:   basic,
		TemporalPatterns:  patterns,
		Anomalies:         anomalyReport(dates, values),
		SignificantEvents: significantEvents(dates, values),
	}, nil
}

func basicStatistics(kind Kind, dates []time.Time, values []float64) (BasicStatistics, error) {
	daily, err := stats.Mean(values)
	if err != nil {
		return BasicStatistics{}, fmt.Errorf("daily average: %w", err)
	}

	weeks := stats.SumByWeek(dates, values)
	weekly := make([]float64, len(weeks))
	for i, w := range weeks {
		weekly[i] = w.Sum
	}
	weeklyAvg, err := stats.Mean(weekly)
	if err != nil {
		return BasicStatistics{}, fmt.Errorf("weekly average: %w", err)
	}

	total, err := toCount("total", stats.Sum(values))
	if err != nil {
		return BasicStatistics{}, err
	}

	return BasicStatistics{
		Kind:               kind,
		Total:              total,
		DaysWithNonzero:    stats.CountPositive(values),
		MaxConsecutiveDays: stats.LongestPositiveRun(values),
		Frequency: Frequency{
			DailyAvg:  stats.Round(daily, 2),
			WeeklyAvg: stats.Round(weeklyAvg, 2),
		},
	}, nil
}

func temporalPatterns(dates []time.Time, values []float64) (TemporalPatterns, error) {
	monthly := make(map[string]int)
	for _, b := range stats.SumByMonth(dates, values) {
		n, err := toCount("monthly trend "+b.Key, b.Sum)
		if err != nil {
			return TemporalPatterns{}, err
		}
		monthly[b.Key] = n
	}
	return TemporalPatterns{
		DailyDistribution: stats.SumByWeekday(dates, values),
		MonthlyTrend:      monthly,
	}, nil
}

// toCount converts an aggregated value to an int, failing when it does not fit.
func toCount(name string, v float64) (int, error) {
	if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("%s %g overflows an integer count", name, v)
	}
	return int(v), nil
}

func anomalyReport(dates []time.Time, values []float64) AnomalyReport {
	outliers := stats.DetectIQROutliers(values)
	report := AnomalyReport{
		Threshold:      outliers.Threshold,
		AnomalousDates: make([]string, 0, len(outliers.Indices)),
		Values:         make([]float64, 0, len(outliers.Indices)),
	}
	for _, i := range outliers.Indices {
		report.AnomalousDates = append(report.AnomalousDates, dates[i].Format(DateLayout))
		report.Values = append(report.Values, values[i])
	}
	return report
}

func significantEvents(dates []time.Time, values []float64) SignificantEvents {
	events := SignificantEvents{
		MostSevereDay: dates[peakIndex(dates, values)].Format(DateLayout),
	}
	if i := latestPositiveIndex(dates, values); i >= 0 {
		recent := dates[i].Format(DateLayout)
		events.RecentOccurrence = &recent
	}
	return events
}

// peakIndex returns the row holding the maximum value; ties go to the earliest date,
// then to the first row.
func peakIndex(dates []time.Time, values []float64) int {
	best := stats.ArgMax(values)
	for i, v := range values {
		if v == values[best] && dates[i].Before(dates[best]) {
			best = i
		}
	}
	return best
}

// latestPositiveIndex returns the row with the latest date among values above zero,
// or -1 when there is none.
func latestPositiveIndex(dates []time.Time, values []float64) int {
	best := -1
	for i, v := range values {
		if v > 0 && (best == -1 || dates[i].After(dates[best])) {
			best = i
		}
	}
	return best
}
