package narrative

import (
	"fmt"
	"slices"
	"strings"

	"hostel-mcp/internal/analysis"
)

// Synthesizer turns structured reports into narrative summaries.
type Synthesizer struct {
	Thresholds Thresholds
}

// New returns a synthesizer gated by th.
func New(th Thresholds) *Synthesizer {
	return &Synthesizer{Thresholds: th}
}

// Metric dispatches a single-metric report to the synthesizer of kind.
func (s *Synthesizer) Metric(kind analysis.Kind, res analysis.Result[analysis.MetricReport]) Summary {
	switch kind {
	case analysis.LateCheckins:
		return s.LateCheckins(res)
	case analysis.OnLeave:
		return s.OnLeave(res)
	case analysis.NonCheckedIn:
		return s.NonCheckedIn(res)
	default:
		return failed(fmt.Sprintf("no narrative for metric %q", kind))
	}
}

// LateCheckins summarises late check-ins.
func (s *Synthesizer) LateCheckins(res analysis.Result[analysis.MetricReport]) Summary {
	if !res.OK() {
		return failed(res.ErrorMessage())
	}
	r := res.Report

	if r.BasicStatistics.Total == 0 {
		return Summary{Text: "There were no late check-ins recorded.", key: legacySummaryKey}
	}

	var out []string
	out = append(out, fmt.Sprintf("The highest number of late check-ins occurred on %s, indicating a possible curfew violation.", r.SignificantEvents.MostSevereDay))

	if hasAnomaly(r.Anomalies) {
		out = append(out, fmt.Sprintf("An unusual late check-in was recorded on %s, suggesting an exception or special event.", r.Anomalies.AnomalousDates[0]))
	}

	if days := keysAbove(r.TemporalPatterns.DailyDistribution, s.Thresholds.LateWeekday); len(days) > 0 {
		out = append(out, fmt.Sprintf("Late check-ins mostly occurred on %s, possibly due to weekend outings or external activities.", strings.Join(days, ", ")))
	}

	if months := keysAbove(r.TemporalPatterns.MonthlyTrend, s.Thresholds.LateMonth); len(months) > 0 {
		out = append(out, fmt.Sprintf("Late check-ins were observed in %s, suggesting a pattern during these months.", strings.Join(months, ", ")))
	}

	if recent := r.SignificantEvents.RecentOccurrence; recent != nil {
		out = append(out, fmt.Sprintf("The last recorded late check-in was on %s.", *recent))
	}

	return newSummary(out)
}

// OnLeave summarises students on leave.
func (s *Synthesizer) OnLeave(res analysis.Result[analysis.MetricReport]) Summary {
	if !res.OK() {
		return failed(res.ErrorMessage())
	}
	r := res.Report
	daily := r.TemporalPatterns.DailyDistribution

	var out []string
	if daily["Friday"] > s.Thresholds.WeekendFriday && daily["Saturday"] > s.Thresholds.WeekendSaturday {
		out = append(out, "Students frequently take leave on Fridays and Saturdays, likely to extend their weekends for travel or relaxation.")
	}

	if months := keysAbove(r.TemporalPatterns.MonthlyTrend, s.Thresholds.LeaveMonth); len(months) > 0 {
		out = append(out, fmt.Sprintf("Significant leave trends were observed in %s, possibly due to holidays, academic breaks, or personal travel.", strings.Join(months, ", ")))
	}

	if hasAnomaly(r.Anomalies) {
		dates := r.Anomalies.AnomalousDates
		out = append(out, fmt.Sprintf("An unusual spike in leaves was recorded from %s to %s, suggesting events like exams, festivals, or urgent travel needs.", dates[0], dates[len(dates)-1]))
	}

	if r.BasicStatistics.MaxConsecutiveDays > s.Thresholds.LeaveStreak {
		out = append(out, "Extended leave patterns suggest that students may have taken breaks for semester exams or long vacations.")
	}

	out = append(out, fmt.Sprintf("The highest number of leaves occurred on %s, possibly due to an important academic or cultural event.", r.SignificantEvents.MostSevereDay))

	if recent := r.SignificantEvents.RecentOccurrence; recent != nil {
		out = append(out, fmt.Sprintf("The last notable leave occurrence was on %s, indicating a possible emerging pattern.", *recent))
	}

	return newSummary(out)
}

// NonCheckedIn summarises students who did not check in or out.
func (s *Synthesizer) NonCheckedIn(res analysis.Result[analysis.MetricReport]) Summary {
	if !res.OK() {
		return failed(res.ErrorMessage())
	}
	r := res.Report

	var out []string
	out = append(out, fmt.Sprintf("A total of %d instances of students not checking out were recorded.", r.BasicStatistics.Total))
	out = append(out, fmt.Sprintf("The highest number of non-checked-in students was recorded on %s.", r.SignificantEvents.MostSevereDay))

	if hasAnomaly(r.Anomalies) {
		out = append(out, fmt.Sprintf("Unusual non-check-in patterns were observed on %s, indicating possible exams, events, or restrictions.", strings.Join(r.Anomalies.AnomalousDates, ", ")))
	}

	if days := keysAbove(r.TemporalPatterns.DailyDistribution, s.Thresholds.NonCheckedInWeekday); len(days) > 0 {
		out = append(out, fmt.Sprintf("Students frequently stayed in on %s, which could indicate weekly tests, bad weather, or social trends.", strings.Join(days, ", ")))
	}

	if months := keysAbove(r.TemporalPatterns.MonthlyTrend, s.Thresholds.NonCheckedInMonth); len(months) > 0 {
		out = append(out, fmt.Sprintf("High instances of non-check-in occurred in %s, suggesting a seasonal pattern or academic deadlines.", strings.Join(months, ", ")))
	}

	if recent := r.SignificantEvents.RecentOccurrence; recent != nil {
		out = append(out, fmt.Sprintf("The most recent occurrence of students not checking out was on %s.", *recent))
	}

	return newSummary(out)
}

// LeaveTrends summarises the planned/urgent leave breakdown.
func (s *Synthesizer) LeaveTrends(res analysis.Result[analysis.LeaveTrendReport]) Summary {
	if !res.OK() {
		return failed(res.ErrorMessage())
	}
	r := res.Report
	b := r.BasicStats
	pct := r.PercentageDistribution

	var out []string
	out = append(out, fmt.Sprintf("A total of %d leaves were recorded, with an average of %s leaves per day.", b.TotalLeaves, formatDecimal(b.AvgDailyLeaves)))
	out = append(out, fmt.Sprintf("Planned leaves accounted for %d (%s%% on average), while urgent leaves were %d (%s%% on average).",
		b.PlannedLeaves.Total, formatDecimal(pct.PlannedPercentage.Mean), b.UrgentLeaves.Total, formatDecimal(pct.UrgentPercentage.Mean)))
	out = append(out, fmt.Sprintf("The highest number of leaves in a single day was %d on %s.", b.MaxLeavesDay.Count, b.MaxLeavesDay.Date))

	out = append(out, fmt.Sprintf("Planned leave anomalies occurred on %s, while urgent leave spikes happened on %s.",
		joinOrNone(r.Anomalies.PlannedAnomalies.Dates), joinOrNone(r.Anomalies.UrgentAnomalies.Dates)))

	if days := keysAbove(r.TemporalPatterns.DailyPatterns.ByWeekday["planned_count"], s.Thresholds.PlannedWeekday); len(days) > 0 {
		out = append(out, fmt.Sprintf("Planned leaves were most frequent on %s, suggesting patterns around weekends or academic schedules.", strings.Join(days, ", ")))
	}

	plannedByMonth := make(map[string]float64, len(r.TemporalPatterns.DailyPatterns.ByMonth))
	for month, counts := range r.TemporalPatterns.DailyPatterns.ByMonth {
		plannedByMonth[month] = counts["planned_count"]
	}
	if months := keysAbove(plannedByMonth, s.Thresholds.PlannedMonth); len(months) > 0 {
		out = append(out, fmt.Sprintf("High planned leave trends were observed in %s, possibly indicating exam or holiday seasons.", strings.Join(months, ", ")))
	}

	var fullUrgency []string
	for _, ev := range r.SignificantEvents.MostUnexpectedUrgent {
		if ev.UrgentPercentage == s.Thresholds.FullUrgencyShare {
			fullUrgency = append(fullUrgency, ev.Date)
		}
	}
	if len(fullUrgency) > 0 {
		out = append(out, fmt.Sprintf("Unexpected urgent leave spikes with 100%% urgency were noted on %s, possibly due to emergencies.", strings.Join(fullUrgency, ", ")))
	}

	return newSummary(out)
}

// hasAnomaly guards anomaly sentences against an empty list before comparing
// the largest anomalous value with the fence.
func hasAnomaly(a analysis.AnomalyReport) bool {
	if len(a.Values) == 0 || len(a.AnomalousDates) == 0 {
		return false
	}
	return slices.Max(a.Values) > a.Threshold
}

func joinOrNone(dates []string) string {
	if len(dates) == 0 {
		return "no dates"
	}
	return strings.Join(dates, ", ")
}
