package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"hostel-mcp/internal/analysis"
)

type GeneratorConfig struct {
	Metric   analysis.Kind
	Scenario string // "mild", "chaos" or "drift"
	Days     int
	Seed     int64
	End      time.Time
}

// LeaveRecord is one row of a plannedUnplannedLeavesTrends body.
type LeaveRecord struct {
	Date              string  `json:"date"`
	UrgentCount       int     `json:"urgent_count"`
	PlannedCount      int     `json:"planned_count"`
	TotalLeaves       int     `json:"total_leaves"`
	UrgentPercentage  float64 `json:"urgent_percentage"`
	PlannedPercentage float64 `json:"planned_percentage"`
}

// Generate builds a request body for cfg.Metric covering cfg.Days days ending at cfg.End.
func Generate(cfg GeneratorConfig) (map[string]any, error) {
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", cfg.Days)
	}
	if cfg.End.IsZero() {
		cfg.End = time.Now()
	}
	end := time.Date(cfg.End.Year(), cfg.End.Month(), cfg.End.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(cfg.Days - 1))
	rng := rand.New(rand.NewSource(cfg.Seed))

	if cfg.Metric == analysis.LeaveTrends {
		records := make([]LeaveRecord, 0, cfg.Days)
		for i := 0; i < cfg.Days; i++ {
			day := start.AddDate(0, 0, i)
			planned := sample(rng, cfg, i, day, baseRate(analysis.LeaveTrends, day))
			urgent := sample(rng, cfg, i, day, 3)
			records = append(records, leaveRecord(day, urgent, planned))
		}
		return map[string]any{"data": map[string]any{"plannedUnplannedLeavesTrends": records}}, nil
	}

	column := cfg.Metric.Column()
	if column == "" {
		return nil, fmt.Errorf("unknown metric %q", cfg.Metric)
	}

	labels := make([]string, 0, cfg.Days)
	values := make([]int, 0, cfg.Days)
	for i := 0; i < cfg.Days; i++ {
		day := start.AddDate(0, 0, i)
		labels = append(labels, day.Format(analysis.DateLayout))
		values = append(values, sample(rng, cfg, i, day, baseRate(cfg.Metric, day)))
	}
	return map[string]any{"data": map[string]any{"labels": labels, column: values}}, nil
}

// baseRate is the mean daily count of a metric; leave peaks on Fridays and Saturdays.
func baseRate(metric analysis.Kind, day time.Time) float64 {
	weekend := day.Weekday() == time.Friday || day.Weekday() == time.Saturday
	switch metric {
	case analysis.LateCheckins:
		if weekend {
			return 4
		}
		return 1
	case analysis.OnLeave:
		if weekend {
			return 25
		}
		return 8
	case analysis.NonCheckedIn:
		return 2
	default:
		if weekend {
			return 12
		}
		return 5
	}
}

func sample(rng *rand.Rand, cfg GeneratorConfig, i int, day time.Time, rate float64) int {
	switch cfg.Scenario {
	case "chaos":
		if rng.Float64() < 0.05 {
			rate *= 4 + rng.Float64()*4 // Controlled Black Swans
		}
	case "drift":
		rate *= 1 + float64(i)/float64(cfg.Days)
	}
	return poisson(rng, rate)
}

// poisson draws from a Poisson distribution with mean lambda (Knuth).
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func leaveRecord(day time.Time, urgent, planned int) LeaveRecord {
	rec := LeaveRecord{
		Date:         day.Format(analysis.DateLayout),
		UrgentCount:  urgent,
		PlannedCount: planned,
		TotalLeaves:  urgent + planned,
	}
	if rec.TotalLeaves > 0 {
		rec.UrgentPercentage = math.Round(float64(urgent)/float64(rec.TotalLeaves)*10000) / 100
		rec.PlannedPercentage = math.Round(float64(planned)/float64(rec.TotalLeaves)*10000) / 100
	}
	return rec
}

// Save writes body as indented JSON to path, or to w when path is "-".
func Save(path string, w io.Writer, body map[string]any) error {
	if path == "-" {
		return encode(w, body)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encode(f, body); err != nil {
		return err
	}
	return f.Close()
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
