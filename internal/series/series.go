package series

import (
	"time"
)

// Point is a single dated observation of one metric.
type Point struct {
	Date  time.Time
	Value float64
}

// Metric is a labeled time series for one count column, in input row order.
type Metric struct {
	Name   string
	Points []Point
}

// Len returns the number of rows.
func (m Metric) Len() int {
	return len(m.Points)
}

// Values returns a copy of the metric column.
func (m Metric) Values() []float64 {
	out := make([]float64, len(m.Points))
	for i, p := range m.Points {
		out[i] = p.Value
	}
	return out
}

// Dates returns the row dates.
func (m Metric) Dates() []time.Time {
	out := make([]time.Time, len(m.Points))
	for i, p := range m.Points {
		out[i] = p.Date
	}
	return out
}

// Leave column names, as they appear on the wire.
const (
	UrgentCount       = "urgent_count"
	PlannedCount      = "planned_count"
	TotalLeaves       = "total_leaves"
	UrgentPercentage  = "urgent_percentage"
	PlannedPercentage = "planned_percentage"
)

// LeaveRecord is one day of the planned/urgent leave breakdown.
type LeaveRecord struct {
	Date              time.Time
	UrgentCount       float64
	PlannedCount      float64
	TotalLeaves       float64
	UrgentPercentage  float64
	PlannedPercentage float64
}

// LeaveTable holds leave records sorted ascending by date.
type LeaveTable struct {
	Rows []LeaveRecord
}

// Len returns the number of rows.
func (t LeaveTable) Len() int {
	return len(t.Rows)
}

// Dates returns the row dates.
func (t LeaveTable) Dates() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Date
	}
	return out
}

// Column returns a copy of the named numeric column. Unknown names yield nil.
func (t LeaveTable) Column(name string) []float64 {
	var pick func(LeaveRecord) float64
	switch name {
	case UrgentCount:
		pick = func(r LeaveRecord) float64 { return r.UrgentCount }
	case PlannedCount:
		pick = func(r LeaveRecord) float64 { return r.PlannedCount }
	case TotalLeaves:
		pick = func(r LeaveRecord) float64 { return r.TotalLeaves }
	case UrgentPercentage:
		pick = func(r LeaveRecord) float64 { return r.UrgentPercentage }
	case PlannedPercentage:
		pick = func(r LeaveRecord) float64 { return r.PlannedPercentage }
	default:
		return nil
	}

	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = pick(r)
	}
	return out
}

// Metric projects one column of the table into a single-metric series.
func (t LeaveTable) Metric(name string) Metric {
	col := t.Column(name)
	m := Metric{Name: name, Points: make([]Point, len(col))}
	for i, v := range col {
		m.Points[i] = Point{Date: t.Rows[i].Date, Value: v}
	}
	return m
}
