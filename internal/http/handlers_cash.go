package http

import (
	"net/http"
	"time"

	"coopledger/internal/core"
)

func (s *Server) handleRecordCashEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction   string `json:"direction"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Date        string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := s.cash.Record(r.Context(),
		core.CashDirection(req.Direction),
		sanitizeInput(req.Category),
		sanitizeInput(req.Description),
		amount, date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCashEntryResponse(entry))
}

// handleListCashEntries lists entries in a date range. The range defaults to
// the current calendar year when the caller sends no bounds.
func (s *Server) handleListCashEntries(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	start := core.NewDate(now.Year(), 1, 1)
	end := core.NewDate(now.Year(), 12, 31)

	if v := r.URL.Query().Get("start"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
			return
		}
		start = d
	}
	if v := r.URL.Query().Get("end"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
			return
		}
		end = d
	}

	entries, err := s.cash.List(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]cashEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toCashEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCashEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.cash.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCashEntryResponse(entry))
}

func (s *Server) handleUpdateCashEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Direction     *string `json:"direction"`
		Category      *string `json:"category"`
		Description   *string `json:"description"`
		Amount        *string `json:"amount"`
		Date          *string `json:"date"`
		Authorization *string `json:"authorization"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var patch core.CashEntryPatch
	if req.Direction != nil {
		d := core.CashDirection(*req.Direction)
		if !d.Valid() {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid cash direction")
			return
		}
		patch.Direction = &d
	}
	if req.Category != nil {
		kind := core.CategoryFromLabel(*req.Category)
		patch.Category = &kind
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		patch.Description = &desc
	}
	if req.Amount != nil {
		m, err := core.ParseMoney(*req.Amount)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		patch.Amount = &m
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		patch.Date = &d
	}
	if req.Authorization != nil {
		auth := core.AuthorizationStatus(*req.Authorization)
		if !auth.Valid() {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid authorization status")
			return
		}
		patch.Authorization = &auth
	}

	updated, err := s.cash.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCashEntryResponse(updated))
}

func (s *Server) handleDeleteCashEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.cash.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
