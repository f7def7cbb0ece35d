package http

import (
	"net/http"

	"coopledger/internal/core"
)

// handleSeedMember lets the membership collaborator push a directory row the
// ledger can resolve codes against. The ledger never edits members itself.
func (s *Server) handleSeedMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	member, err := s.contributions.SeedMember(r.Context(), sanitizeInput(req.Code), sanitizeInput(req.Name))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	}{member.ID, member.Code, member.Name})
}

func (s *Server) handleRecordContribution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID         int64  `json:"member_id"`
		MemberCode       string `json:"member_code"`
		Month            int    `json:"month"`
		Year             int    `json:"year"`
		MandatoryDues    string `json:"mandatory_dues"`
		VoluntarySavings string `json:"voluntary_savings"`
		MandatorySavings string `json:"mandatory_savings"`
		PaymentDate      string `json:"payment_date"`
		Status           string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	memberID := req.MemberID
	if memberID == 0 && req.MemberCode != "" {
		member, err := s.contributions.ResolveMemberCode(r.Context(), sanitizeInput(req.MemberCode))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		memberID = member.ID
	}

	dues, err := parseOptionalMoney(req.MandatoryDues)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid mandatory dues amount")
		return
	}
	voluntary, err := parseOptionalMoney(req.VoluntarySavings)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid voluntary savings amount")
		return
	}
	mandatory, err := parseOptionalMoney(req.MandatorySavings)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid mandatory savings amount")
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid payment date, expected YYYY-MM-DD")
		return
	}

	entry := core.Contribution{
		MemberID:         memberID,
		Month:            req.Month,
		Year:             req.Year,
		MandatoryDues:    dues,
		VoluntarySavings: voluntary,
		MandatorySavings: mandatory,
		PaymentDate:      paymentDate,
		Status:           core.ContributionStatus(req.Status),
	}

	recorded, err := s.contributions.Record(r.Context(), entry)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContributionResponse(recorded))
}

// handleListContributions lists a member's entries. The caller supplies
// either member_id or member_code; code resolution goes through the cached
// directory lookup.
func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	var (
		entries []core.Contribution
		err     error
	)

	switch {
	case r.URL.Query().Get("member_id") != "":
		id, perr := parsePositiveInt(r.URL.Query().Get("member_id"))
		if perr != nil {
			writeError(w, r, http.StatusBadRequest, "invalid member_id")
			return
		}
		entries, err = s.contributions.ListByMember(r.Context(), id)
	case r.URL.Query().Get("member_code") != "":
		entries, err = s.contributions.ListByMemberCode(r.Context(), sanitizeInput(r.URL.Query().Get("member_code")))
	default:
		writeError(w, r, http.StatusBadRequest, "member_id or member_code query parameter required")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]contributionResponse, 0, len(entries))
	for _, c := range entries {
		resp = append(resp, toContributionResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.contributions.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionResponse(entry))
}

func (s *Server) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		MandatoryDues    *string `json:"mandatory_dues"`
		VoluntarySavings *string `json:"voluntary_savings"`
		MandatorySavings *string `json:"mandatory_savings"`
		PaymentDate      *string `json:"payment_date"`
		Status           *string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var patch core.ContributionPatch
	if req.MandatoryDues != nil {
		m, err := parseOptionalMoney(*req.MandatoryDues)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid mandatory dues amount")
			return
		}
		patch.MandatoryDues = &m
	}
	if req.VoluntarySavings != nil {
		m, err := parseOptionalMoney(*req.VoluntarySavings)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid voluntary savings amount")
			return
		}
		patch.VoluntarySavings = &m
	}
	if req.MandatorySavings != nil {
		m, err := parseOptionalMoney(*req.MandatorySavings)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid mandatory savings amount")
			return
		}
		patch.MandatorySavings = &m
	}
	if req.PaymentDate != nil {
		d, err := parseDate(*req.PaymentDate)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid payment date, expected YYYY-MM-DD")
			return
		}
		patch.PaymentDate = &d
	}
	if req.Status != nil {
		st := core.ContributionStatus(*req.Status)
		if st != core.ContributionPaid && st != core.ContributionUnpaid {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid contribution status")
			return
		}
		patch.Status = &st
	}

	updated, err := s.contributions.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionResponse(updated))
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.contributions.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
