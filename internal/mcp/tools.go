package mcp

import (
	"hostel-mcp/internal/analysis"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolDefinition struct {
	kind        analysis.Kind
	name        string
	description string
	data        *jsonschema.Schema
}

func metricSchema(column, description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Daily attendance series: parallel arrays of dates and counts of equal length.",
		Properties: map[string]*jsonschema.Schema{
			"labels": {
				Type:        "array",
				Description: "Dates of each row (YYYY-MM-DD preferred).",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			column: {
				Type:        "array",
				Description: description,
				Items:       &jsonschema.Schema{Types: []string{"number", "string"}},
			},
		},
		Required: []string{"labels", column},
	}
}

func leaveTrendsSchema() *jsonschema.Schema {
	number := func(description string) *jsonschema.Schema {
		return &jsonschema.Schema{Types: []string{"number", "string"}, Description: description}
	}
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Daily planned/urgent leave breakdown.",
		Properties: map[string]*jsonschema.Schema{
			"plannedUnplannedLeavesTrends": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"date":               {Type: "string", Description: "Date of the row (YYYY-MM-DD preferred)."},
						"urgent_count":       number("Urgent leaves taken that day."),
						"planned_count":      number("Planned leaves taken that day."),
						"total_leaves":       number("All leaves taken that day."),
						"urgent_percentage":  number("Urgent share of the day's leaves, 0-100."),
						"planned_percentage": number("Planned share of the day's leaves, 0-100."),
					},
					Required: []string{"date", "urgent_count", "planned_count", "total_leaves", "urgent_percentage", "planned_percentage"},
				},
			},
		},
		Required: []string{"plannedUnplannedLeavesTrends"},
	}
}

func toolDefinitions() []toolDefinition {
	return []toolDefinition{
		{
			kind: analysis.LateCheckins,
			name: "analyze_late_checkins",
			description: "Analyze daily late check-ins of hostel students and summarize them in plain language. " +
				"Returns the narrative summary first, then the structured report (totals, streaks, weekday and monthly patterns, IQR anomalies, peak and latest days). " +
				"Guidance: report the narrative as written; do not invent trends that are absent from the structured report.",
			data: metricSchema("late_checked_in", "Late check-ins per day (non-negative)."),
		},
		{
			kind: analysis.OnLeave,
			name: "analyze_on_leave",
			description: "Analyze how many students were on leave each day and summarize weekend, monthly and streak patterns. " +
				"Returns the narrative summary first, then the structured report.",
			data: metricSchema("on_leave", "Students on leave per day (non-negative)."),
		},
		{
			kind: analysis.NonCheckedIn,
			name: "analyze_non_checked_in",
			description: "Analyze daily counts of students who did not check out of the hostel and summarize weekday and seasonal patterns. " +
				"Returns the narrative summary first, then the structured report.",
			data: metricSchema("non_checked_in", "Students not checked in/out per day (non-negative)."),
		},
		{
			kind: analysis.LeaveTrends,
			name: "analyze_leave_trends",
			description: "Analyze the planned versus urgent leave breakdown: totals, weekday/monthly patterns, anomalies, 100%-urgency days, correlations and planning efficiency. " +
				"Returns the narrative summary first, then the structured report.",
			data: leaveTrendsSchema(),
		},
	}
}

func inputSchema(data *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"data": data,
		},
	}
}

func (s *Server) registerTools() {
	for _, def := range toolDefinitions() {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        def.name,
			Description: def.description,
			InputSchema: inputSchema(def.data),
		}, s.toolHandler(def.kind))
	}
}
