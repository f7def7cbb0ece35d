package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coopledger/internal/core"
)

// errorResponse is the JSON shape every failed request returns.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	if statusCode >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"status", statusCode, "path", r.URL.Path, "message", message)
	}
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeDomainError maps domain sentinels onto HTTP statuses. Conflicts keep
// their own status so callers can distinguish duplicates from bad input.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrMemberNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrDuplicateInstallment), errors.Is(err, core.ErrDuplicatePeriodEntry):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidLoanTerms),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrInvalidPrincipalShare),
		errors.Is(err, core.ErrEmptyDescription):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields so typos
// in field names fail loudly instead of silently defaulting.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsedTime}, nil
}

// parseOptionalMoney parses an amount that may legitimately be absent or
// zero, unlike core.ParseMoney which requires a positive value.
func parseOptionalMoney(s string) (core.Money, error) {
	return core.ParseOptionalMoney(s)
}

// pathID extracts a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// parsePositiveInt parses a positive integer query value.
func parsePositiveInt(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return id, nil
}

// clientIP extracts the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
