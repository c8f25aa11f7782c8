package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendsight/internal/core"
	"spendsight/internal/insights"
	"spendsight/internal/store"
)

type ctxKey int

const (
	ctxKeyOwner ctxKey = iota
	ctxKeyRequestID
)

// ownerFrom returns the authenticated owner set by requireUser.
func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ctxKeyOwner).(string)
	return owner
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	return body
}

func writeData(w http.ResponseWriter, status int, data any) []byte {
	return writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses: validation
// failures are the client's fault, missing records are 404, the duplicate
// active budget rule is a conflict, everything else is a 500 with a
// generic message so internals never leak.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateBudget):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isInputError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidCategory,
		core.ErrInvalidMonth,
		core.ErrEmptyTitle,
		core.ErrEmptyOwner,
		core.ErrInvalidThreshold,
		insights.ErrEmptyQuestion,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// monthParam reads the optional ?month= query parameter, defaulting to the
// current month.
func monthParam(r *http.Request) (core.Month, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return core.CurrentMonth(timeNow()), nil
	}
	return core.ParseMonth(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
