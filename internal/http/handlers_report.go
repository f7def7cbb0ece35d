package http

import (
	"net/http"

	"coopledger/internal/core"
)

type reportRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	ReportType  string `json:"report_type"`
	CreatedBy   string `json:"created_by"`
}

func (s *Server) parseReportRequest(w http.ResponseWriter, r *http.Request) (start, end core.Date, reportType core.ReportType, createdBy string, ok bool) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid period start, expected YYYY-MM-DD")
		return
	}
	end, err = parseDate(req.PeriodEnd)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid period end, expected YYYY-MM-DD")
		return
	}
	reportType = core.ReportType(req.ReportType)
	if !reportType.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid report type, expected monthly, quarterly or annual")
		return
	}
	return start, end, reportType, sanitizeInput(req.CreatedBy), true
}

// handleGenerateReport computes a report without persisting it.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	start, end, reportType, _, ok := s.parseReportRequest(w, r)
	if !ok {
		return
	}

	snap, err := s.reports.Generate(r.Context(), start, end, reportType)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(snap))
}

// handleSaveReport computes and persists an immutable snapshot. The caller
// identity arrives from the auth collaborator as an opaque created_by value.
func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	start, end, reportType, createdBy, ok := s.parseReportRequest(w, r)
	if !ok {
		return
	}
	if createdBy == "" {
		writeError(w, r, http.StatusBadRequest, "created_by is required")
		return
	}

	snap, err := s.reports.Save(r.Context(), start, end, reportType, createdBy)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportResponse(snap))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.reports.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]reportResponse, 0, len(snaps))
	for _, snap := range snaps {
		resp = append(resp, toReportResponse(snap))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	snap, err := s.reports.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(snap))
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.reports.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
