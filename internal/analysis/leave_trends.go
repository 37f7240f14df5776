package analysis

import (
	"fmt"
	"time"

	"hostel-mcp/internal/series"
	"hostel-mcp/internal/stats"
)

const (
	// RatioEpsilon keeps per-row ratios finite on zero-leave days.
	RatioEpsilon = 1e-6
	// UnexpectedUrgentPercentage is the urgent share above which a day is an unexpected event.
	UnexpectedUrgentPercentage = 70.0
)

// DayCount pairs a date with an integer count.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LeaveKindStats summarises either the urgent or the planned column.
type LeaveKindStats struct {
	Total    int     `json:"total"`
	DailyAvg float64 `json:"daily_avg"`
	MaxDay   string  `json:"max_day"`
}

// LeaveBasicStats holds totals and averages across the leave table.
type LeaveBasicStats struct {
	TotalLeaves    int            `json:"total_leaves"`
	AvgDailyLeaves float64        `json:"avg_daily_leaves"`
	MaxLeavesDay   DayCount       `json:"max_leaves_day"`
	UrgentLeaves   LeaveKindStats `json:"urgent_leaves"`
	PlannedLeaves  LeaveKindStats `json:"planned_leaves"`
}

// DailyPatterns groups urgent and planned counts jointly.
type DailyPatterns struct {
	// column -> weekday -> sum
	ByWeekday map[string]map[string]float64 `json:"by_weekday"`
	// "YYYY-MM" -> column -> sum
	ByMonth map[string]map[string]float64 `json:"by_month"`
}

type LeaveTemporalPatterns struct {
	DailyPatterns DailyPatterns `json:"daily_patterns"`
}

// DatedValues lists the outlier rows of one column.
type DatedValues struct {
	Threshold float64   `json:"threshold"`
	Dates     []string  `json:"dates"`
	Values    []float64 `json:"values"`
}

type LeaveAnomalies struct {
	UrgentAnomalies  DatedValues `json:"urgent_anomalies"`
	PlannedAnomalies DatedValues `json:"planned_anomalies"`
}

// PercentageEvent is the day holding the highest share of one leave kind.
type PercentageEvent struct {
	Date        string  `json:"date"`
	Percentage  float64 `json:"percentage"`
	TotalLeaves int     `json:"total_leaves"`
}

// UrgentEvent is a day whose urgent share exceeded UnexpectedUrgentPercentage.
type UrgentEvent struct {
	Date             string  `json:"date"`
	UrgentPercentage float64 `json:"urgent_percentage"`
	TotalLeaves      int     `json:"total_leaves"`
}

type LeaveEvents struct {
	HighestUrgentPercentage  PercentageEvent `json:"highest_urgent_percentage"`
	HighestPlannedPercentage PercentageEvent `json:"highest_planned_percentage"`
	MostUnexpectedUrgent     []UrgentEvent   `json:"most_unexpected_urgent"`
}

// Correlations are Pearson coefficients; nil when undefined.
type Correlations struct {
	UrgentVsPlanned *float64 `json:"urgent_vs_planned"`
	UrgentVsTotal   *float64 `json:"urgent_vs_total"`
	PlannedVsTotal  *float64 `json:"planned_vs_total"`
}

// Spread is the mean and sample standard deviation of a percentage column.
type Spread struct {
	Mean   float64  `json:"mean"`
	StdDev *float64 `json:"std_dev"`
}

type PercentageDistribution struct {
	UrgentPercentage  Spread `json:"urgent_percentage"`
	PlannedPercentage Spread `json:"planned_percentage"`
}

// RatioSeries is a per-row ratio with its mean.
type RatioSeries struct {
	Mean   float64   `json:"mean"`
	Values []float64 `json:"values"`
}

type DerivedRatios struct {
	Dates              []string    `json:"dates"`
	UrgentRatio        RatioSeries `json:"urgent_ratio"`
	PlanningEfficiency RatioSeries `json:"planning_efficiency"`
}

// LeaveTrendReport is the full multi-metric analysis of planned/urgent leave.
type LeaveTrendReport struct {
	BasicStats             LeaveBasicStats        `json:"basic_stats"`
	TemporalPatterns       LeaveTemporalPatterns  `json:"temporal_patterns"`
	Anomalies              LeaveAnomalies         `json:"anomalies"`
	SignificantEvents      LeaveEvents            `json:"significant_events"`
	CorrelationAnalysis    Correlations           `json:"correlation_analysis"`
	PercentageDistribution PercentageDistribution `json:"percentage_distribution"`
	DerivedRatios          DerivedRatios          `json:"derived_ratios"`
}

// AnalyzeLeaveTrends parses a plannedUnplannedLeavesTrends request body and analyses it.
func AnalyzeLeaveTrends(body []byte) Result[LeaveTrendReport] {
	return guard(string(LeaveTrends), func() (*LeaveTrendReport, error) {
		table, err := series.BuildLeaveTrends(body)
		if err != nil {
			return nil, err
		}
		return NewLeaveTrendReport(table)
	})
}

// NewLeaveTrendReport computes every section of the leave-trend report.
func NewLeaveTrendReport(t series.LeaveTable) (*LeaveTrendReport, error) {
	if t.Len() == 0 {
		return nil, &ValidationError{Field: series.LeaveTrendsField, Reason: "series is empty"}
	}

	dates := t.Dates()
	urgent := t.Column(series.UrgentCount)
	planned := t.Column(series.PlannedCount)
	total := t.Column(series.TotalLeaves)
	urgentPct := t.Column(series.UrgentPercentage)
	plannedPct := t.Column(series.PlannedPercentage)

	basic, err := leaveBasicStats(dates, urgent, planned, total)
	if err != nil {
		return nil, err
	}
	distribution, err := percentageDistribution(urgentPct, plannedPct)
	if err != nil {
		return nil, err
	}
	ratios, err := derivedRatios(dates, urgent, planned, total)
	if err != nil {
		return nil, err
	}

	return &LeaveTrendReport{
		BasicStats:       basic,
		TemporalPatterns: LeaveTemporalPatterns{DailyPatterns: leaveDailyPatterns(dates, urgent, planned)},
		Anomalies: LeaveAnomalies{
			UrgentAnomalies:  datedOutliers(dates, urgent),
			PlannedAnomalies: datedOutliers(dates, planned),
		},
		SignificantEvents: LeaveEvents{
			HighestUrgentPercentage:  percentageEvent(dates, urgentPct, total),
			HighestPlannedPercentage: percentageEvent(dates, plannedPct, total),
			MostUnexpectedUrgent:     unexpectedUrgent(dates, urgentPct, total),
		},
		CorrelationAnalysis: Correlations{
			UrgentVsPlanned: correlation(urgent, planned),
			UrgentVsTotal:   correlation(urgent, total),
			PlannedVsTotal:  correlation(planned, total),
		},
		PercentageDistribution: distribution,
		DerivedRatios:          ratios,
	}, nil
}

func leaveBasicStats(dates []time.Time, urgent, planned, total []float64) (LeaveBasicStats, error) {
	kind := func(name string, values []float64) (LeaveKindStats, error) {
		avg, err := stats.Mean(values)
		if err != nil {
			return LeaveKindStats{}, fmt.Errorf("%s average: %w", name, err)
		}
		sum, err := toCount(name+" total", stats.Sum(values))
		if err != nil {
			return LeaveKindStats{}, err
		}
		return LeaveKindStats{
			Total:    sum,
			DailyAvg: stats.Round(avg, 2),
			MaxDay:   dates[peakIndex(dates, values)].Format(DateLayout),
		}, nil
	}

	avgTotal, err := stats.Mean(total)
	if err != nil {
		return LeaveBasicStats{}, fmt.Errorf("total average: %w", err)
	}
	urgentStats, err := kind(series.UrgentCount, urgent)
	if err != nil {
		return LeaveBasicStats{}, err
	}
	plannedStats, err := kind(series.PlannedCount, planned)
	if err != nil {
		return LeaveBasicStats{}, err
	}

	sumTotal, err := toCount("total leaves", stats.Sum(total))
	if err != nil {
		return LeaveBasicStats{}, err
	}

	peak := peakIndex(dates, total)
	return LeaveBasicStats{
		TotalLeaves:    sumTotal,
		AvgDailyLeaves: stats.Round(avgTotal, 2),
		MaxLeavesDay: DayCount{
			Date:  dates[peak].Format(DateLayout),
			Count: int(total[peak]),
		},
		UrgentLeaves:  urgentStats,
		PlannedLeaves: plannedStats,
	}, nil
}

func leaveDailyPatterns(dates []time.Time, urgent, planned []float64) DailyPatterns {
	columns := []struct {
		name   string
		values []float64
	}{
		{series.UrgentCount, urgent},
		{series.PlannedCount, planned},
	}

	patterns := DailyPatterns{
		ByWeekday: make(map[string]map[string]float64),
		ByMonth:   make(map[string]map[string]float64),
	}
	for _, col := range columns {
		patterns.ByWeekday[col.name] = stats.SumByWeekday(dates, col.values)
		for _, b := range stats.SumByMonth(dates, col.values) {
			if patterns.ByMonth[b.Key] == nil {
				patterns.ByMonth[b.Key] = make(map[string]float64)
			}
			patterns.ByMonth[b.Key][col.name] = b.Sum
		}
	}
	return patterns
}

func datedOutliers(dates []time.Time, values []float64) DatedValues {
	a := anomalyReport(dates, values)
	return DatedValues{Threshold: a.Threshold, Dates: a.AnomalousDates, Values: a.Values}
}

func percentageEvent(dates []time.Time, pct, total []float64) PercentageEvent {
	i := peakIndex(dates, pct)
	return PercentageEvent{
		Date:        dates[i].Format(DateLayout),
		Percentage:  stats.Round(pct[i], 2),
		TotalLeaves: int(total[i]),
	}
}

func unexpectedUrgent(dates []time.Time, urgentPct, total []float64) []UrgentEvent {
	events := []UrgentEvent{}
	for i, p := range urgentPct {
		if p > UnexpectedUrgentPercentage {
			events = append(events, UrgentEvent{
				Date:             dates[i].Format(DateLayout),
				UrgentPercentage: stats.Round(p, 2),
				TotalLeaves:      int(total[i]),
			})
		}
	}
	return events
}

func correlation(x, y []float64) *float64 {
	r, ok := stats.Pearson(x, y)
	if !ok {
		return nil
	}
	r = stats.Round(r, 3)
	return &r
}

func spread(name string, values []float64) (Spread, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return Spread{}, fmt.Errorf("%s mean: %w", name, err)
	}
	s := Spread{Mean: stats.Round(mean, 2)}
	if sd, ok := stats.SampleStdDev(values); ok {
		sd = stats.Round(sd, 2)
		s.StdDev = &sd
	}
	return s, nil
}

func percentageDistribution(urgentPct, plannedPct []float64) (PercentageDistribution, error) {
	urgent, err := spread(series.UrgentPercentage, urgentPct)
	if err != nil {
		return PercentageDistribution{}, err
	}
	planned, err := spread(series.PlannedPercentage, plannedPct)
	if err != nil {
		return PercentageDistribution{}, err
	}
	return PercentageDistribution{UrgentPercentage: urgent, PlannedPercentage: planned}, nil
}

func derivedRatios(dates []time.Time, urgent, planned, total []float64) (DerivedRatios, error) {
	ratios := DerivedRatios{
		Dates:              make([]string, len(dates)),
		UrgentRatio:        RatioSeries{Values: make([]float64, len(dates))},
		PlanningEfficiency: RatioSeries{Values: make([]float64, len(dates))},
	}
	for i := range dates {
		ratios.Dates[i] = dates[i].Format(DateLayout)
		ratios.UrgentRatio.Values[i] = urgent[i] / (total[i] + RatioEpsilon)
		ratios.PlanningEfficiency.Values[i] = planned[i] / (planned[i] + urgent[i] + RatioEpsilon)
	}

	urgentMean, err := stats.Mean(ratios.UrgentRatio.Values)
	if err != nil {
		return DerivedRatios{}, fmt.Errorf("urgent ratio: %w", err)
	}
	efficiencyMean, err := stats.Mean(ratios.PlanningEfficiency.Values)
	if err != nil {
		return DerivedRatios{}, fmt.Errorf("planning efficiency: %w", err)
	}
	ratios.UrgentRatio.Mean = stats.Round(urgentMean, 4)
	ratios.PlanningEfficiency.Mean = stats.Round(efficiencyMean, 4)
	for i := range dates {
		ratios.UrgentRatio.Values[i] = stats.Round(ratios.UrgentRatio.Values[i], 4)
		ratios.PlanningEfficiency.Values[i] = stats.Round(ratios.PlanningEfficiency.Values[i], 4)
	}
	return ratios, nil
}
