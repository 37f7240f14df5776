package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const noDataMessage = "No JSON data received"

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

var errNoData = errors.New(noDataMessage)

// readBody returns the request body when it holds a non-empty JSON value.
// Empty objects, arrays, strings, zero, false and null all count as no data.
// A body over the MaxBytesReader limit fails with *http.MaxBytesError.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, errNoData
	}
	if len(body) == 0 {
		return nil, errNoData
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, errNoData
	}
	usable := true
	switch t := v.(type) {
	case nil:
		usable = false
	case map[string]any:
		usable = len(t) > 0
	case []any:
		usable = len(t) > 0
	case string:
		usable = t != ""
	case float64:
		usable = t != 0
	case bool:
		usable = t
	}
	if !usable {
		return nil, errNoData
	}
	return body, nil
}

// writeBodyError answers a rejected body: 413 when it is over the size cap,
// 400 otherwise.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody(noDataMessage))
}

// handleNarrative serves one of the narrative routes: 400 without usable JSON, 413
// over the body cap, otherwise 200 with the summary or the passed-through analysis error.
func (s *Server) handleNarrative(kind analysis.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		body, err := readBody(r)
		if err != nil {
			writeBodyError(w, err)
			return
		}

		o := report.Build(kind, body, s.synth, report.Options{})
		if !o.OK() {
			s.recordFailure(r, kind, o.Err)
		}
		writeJSON(w, http.StatusOK, o.Summary)
	}
}

// handleAnalysis serves the structured report of any metric.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := analysis.ParseKind(chi.URLParam(r, "metric"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := readBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	o := report.Build(kind, body, s.synth, report.Options{})
	status := http.StatusOK
	if !o.OK() {
		s.recordFailure(r, kind, o.Err)
		status = http.StatusInternalServerError
		if analysis.IsValidation(o.Err) {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, o.Result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) recordFailure(r *http.Request, kind analysis.Kind, err error) {
	reason := "computation"
	if analysis.IsValidation(err) {
		reason = "validation"
	}
	s.metrics.failure(string(kind), reason)
	log.Warn().
		Err(err).
		Str("requestId", RequestIDFrom(r.Context())).
		Str("metric", string(kind)).
		Str("reason", reason).
		Msg("Analysis failed")
}
