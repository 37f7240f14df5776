package visuals

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"hostel-mcp/internal/analysis"
)

var weekdayOrder = []string{
	time.Monday.String(), time.Tuesday.String(), time.Wednesday.String(), time.Thursday.String(),
	time.Friday.String(), time.Saturday.String(), time.Sunday.String(),
}

var metricTitles = map[analysis.Kind]string{
	analysis.LateCheckins: "Late Check-ins",
	analysis.OnLeave:      "Students On Leave",
	analysis.NonCheckedIn: "Non-Checked-In Students",
}

// MetricCharts returns the weekday and monthly bar charts of a single-metric report.
func MetricCharts(r *analysis.MetricReport) []string {
	if r == nil {
		return nil
	}
	title := metricTitles[r.Kind]
	if title == "" {
		title = string(r.Kind)
	}

	var charts []string
	if chart := GenerateWeekdayChart(title+" by Weekday", r.TemporalPatterns.DailyDistribution); chart != "" {
		charts = append(charts, chart)
	}

	monthly := make(map[string]float64, len(r.TemporalPatterns.MonthlyTrend))
	for k, v := range r.TemporalPatterns.MonthlyTrend {
		monthly[k] = float64(v)
	}
	if chart := GenerateMonthlyChart(title+" by Month", monthly); chart != "" {
		charts = append(charts, chart)
	}
	return charts
}

// LeaveTrendCharts returns the planned/urgent weekday and monthly charts of a leave-trend report.
func LeaveTrendCharts(r *analysis.LeaveTrendReport) []string {
	if r == nil {
		return nil
	}
	p := r.TemporalPatterns.DailyPatterns

	var charts []string
	for _, col := range []struct{ key, title string }{
		{"planned_count", "Planned Leaves by Weekday"},
		{"urgent_count", "Urgent Leaves by Weekday"},
	} {
		if chart := GenerateWeekdayChart(col.title, p.ByWeekday[col.key]); chart != "" {
			charts = append(charts, chart)
		}
	}
	if chart := GenerateMonthlySplitChart("Planned vs Urgent Leaves by Month", p.ByMonth); chart != "" {
		charts = append(charts, chart)
	}
	return charts
}

// GenerateWeekdayChart creates a Mermaid bar chart of per-weekday sums in calendar order.
func GenerateWeekdayChart(title string, byWeekday map[string]float64) string {
	if len(byWeekday) == 0 {
		return ""
	}

	var labels []string
	var values []float64
	for _, day := range weekdayOrder {
		if v, ok := byWeekday[day]; ok {
			labels = append(labels, quote(day[:3]))
			values = append(values, v)
		}
	}
	return barChart(title, "Count", labels, values)
}

// GenerateMonthlyChart creates a Mermaid bar chart of per-month sums in chronological order.
func GenerateMonthlyChart(title string, byMonth map[string]float64) string {
	if len(byMonth) == 0 {
		return ""
	}

	var labels []string
	var values []float64
	for _, month := range slices.Sorted(maps.Keys(byMonth)) {
		labels = append(labels, quote(month))
		values = append(values, byMonth[month])
	}
	return barChart(title, "Count", labels, values)
}

// GenerateMonthlySplitChart draws planned counts as bars and urgent counts as a line.
func GenerateMonthlySplitChart(title string, byMonth map[string]map[string]float64) string {
	if len(byMonth) == 0 {
		return ""
	}

	var labels []string
	var planned, urgent []string
	maxVal := 0.0
	for _, month := range slices.Sorted(maps.Keys(byMonth)) {
		p, u := byMonth[month]["planned_count"], byMonth[month]["urgent_count"]
		labels = append(labels, quote(month))
		planned = append(planned, fmt.Sprintf("%.0f", p))
		urgent = append(urgent, fmt.Sprintf("%.0f", u))
		maxVal = math.Max(maxVal, math.Max(p, u))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Leaves\" 0 --> %d\n", axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(planned, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(urgent, ", ")))
	sb.WriteString("```")
	return sb.String()
}

func barChart(title, axis string, labels []string, values []float64) string {
	if len(values) == 0 {
		return ""
	}

	formatted := make([]string, len(values))
	maxVal := 0.0
	for i, v := range values {
		formatted[i] = fmt.Sprintf("%.0f", v)
		maxVal = math.Max(maxVal, v)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", axis, axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(formatted, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// axisMax leaves 20% headroom above the tallest value, and at least one unit.
func axisMax(maxVal float64) int {
	return int(math.Ceil(maxVal)) + int(math.Max(1, math.Ceil(maxVal*0.2)))
}

func quote(s string) string {
	return fmt.Sprintf("\"%s\"", s)
}
