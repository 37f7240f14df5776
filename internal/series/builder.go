package series

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LeaveTrendsField is the key of the record list in a leave-trend payload.
const LeaveTrendsField = "plannedUnplannedLeavesTrends"

// ValidationError reports malformed, missing or mismatched input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a date label and truncates it to a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// MaxValue is the largest accepted row value. Larger numbers lose integer precision
// as float64 and cannot be summed into an int count.
const MaxValue = 1e15

// ParseNumber decodes a JSON number or numeric string into a float in [0, MaxValue].
func ParseNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("value is missing")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("malformed string %s", raw)
		}
		text = strings.TrimSpace(text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-numeric value %s", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %s", raw)
	}
	if v > MaxValue {
		return 0, fmt.Errorf("value %s exceeds the maximum of %g", raw, MaxValue)
	}
	return v, nil
}

// decodeData extracts the "data" object of a request body.
func decodeData(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, invalid("", "no JSON data received")
	}

	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, invalid("data", "malformed request body: %v", err)
	}
	if envelope.Data == nil {
		return nil, invalid("data", "field is required")
	}
	return envelope.Data, nil
}

// BuildMetric builds a single-metric series from parallel "labels" and column arrays.
// Rows keep the order given; duplicate dates stay as separate rows.
func BuildMetric(body []byte, column string) (Metric, error) {
	data, err := decodeData(body)
	if err != nil {
		return Metric{}, err
	}

	rawLabels, ok := data["labels"]
	if !ok {
		return Metric{}, invalid("data.labels", "field is required")
	}
	var labels []string
	if err := json.Unmarshal(rawLabels, &labels); err != nil {
		return Metric{}, invalid("data.labels", "must be an array of date strings")
	}

	field := "data." + column
	rawValues, ok := data[column]
	if !ok {
		return Metric{}, invalid(field, "field is required")
	}
	var values []json.RawMessage
	if err := json.Unmarshal(rawValues, &values); err != nil {
		return Metric{}, invalid(field, "must be an array of numbers")
	}

	if len(labels) != len(values) {
		return Metric{}, invalid(field, "length %d does not match %d labels", len(values), len(labels))
	}
	if len(labels) == 0 {
		return Metric{}, invalid(field, "series is empty")
	}

	m := Metric{Name: column, Points: make([]Point, len(labels))}
	for i := range labels {
		date, err := ParseDate(labels[i])
		if err != nil {
			return Metric{}, invalid(fmt.Sprintf("data.labels[%d]", i), "%v", err)
		}
		v, err := ParseNumber(values[i])
		if err != nil {
			return Metric{}, invalid(fmt.Sprintf("%s[%d]", field, i), "%v", err)
		}
		m.Points[i] = Point{Date: date, Value: v}
	}
	return m, nil
}

type leaveRecordInput struct {
	Date              string          `json:"date" validate:"required"`
	UrgentCount       json.RawMessage `json:"urgent_count" validate:"required"`
	PlannedCount      json.RawMessage `json:"planned_count" validate:"required"`
	TotalLeaves       json.RawMessage `json:"total_leaves" validate:"required"`
	UrgentPercentage  json.RawMessage `json:"urgent_percentage" validate:"required"`
	PlannedPercentage json.RawMessage `json:"planned_percentage" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BuildLeaveTrends builds the leave table from a list of per-date records, sorted
// ascending by date. Records sharing a date keep their input order.
func BuildLeaveTrends(body []byte) (LeaveTable, error) {
	data, err := decodeData(body)
	if err != nil {
		return LeaveTable{}, err
	}

	field := "data." + LeaveTrendsField
	rawRecords, ok := data[LeaveTrendsField]
	if !ok {
		return LeaveTable{}, invalid(field, "field is required")
	}
	var inputs []leaveRecordInput
	if err := json.Unmarshal(rawRecords, &inputs); err != nil {
		return LeaveTable{}, invalid(field, "must be an array of leave records")
	}
	if len(inputs) == 0 {
		return LeaveTable{}, invalid(field, "series is empty")
	}

	table := LeaveTable{Rows: make([]LeaveRecord, len(inputs))}
	for i, in := range inputs {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if err := validate.Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return LeaveTable{}, invalid(prefix+"."+verrs[0].Field(), "field is required")
			}
			return LeaveTable{}, invalid(prefix, "%v", err)
		}

		date, err := ParseDate(in.Date)
		if err != nil {
			return LeaveTable{}, invalid(prefix+".date", "%v", err)
		}
		rec := LeaveRecord{Date: date}

		numeric := []struct {
			name string
			raw  json.RawMessage
			dst  *float64
		}{
			{UrgentCount, in.UrgentCount, &rec.UrgentCount},
			{PlannedCount, in.PlannedCount, &rec.PlannedCount},
			{TotalLeaves, in.TotalLeaves, &rec.TotalLeaves},
			{UrgentPercentage, in.UrgentPercentage, &rec.UrgentPercentage},
			{PlannedPercentage, in.PlannedPercentage, &rec.PlannedPercentage},
		}
		for _, col := range numeric {
			v, err := ParseNumber(col.raw)
			if err != nil {
				return LeaveTable{}, invalid(prefix+"."+col.name, "%v", err)
			}
			*col.dst = v
		}
		table.Rows[i] = rec
	}

	slices.SortStableFunc(table.Rows, func(a, b LeaveRecord) int {
		return a.Date.Compare(b.Date)
	})
	return table, nil
}
