package http

import (
	"log/slog"
	"net/http"

	"coopledger/internal/core"
)

func (s *Server) handleComputeAmortization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Principal   string `json:"principal"`
		RatePercent string `json:"rate_percent"`
		TermMonths  int    `json:"term_months"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	principal, err := core.ParseMoney(req.Principal)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid principal amount")
		return
	}
	rateBps, err := core.PercentToBps(req.RatePercent)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid interest rate")
		return
	}

	am, err := core.Amortize(principal, rateBps, req.TermMonths)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TotalInterest      string `json:"total_interest"`
		TotalPayable       string `json:"total_payable"`
		MonthlyInstallment string `json:"monthly_installment"`
	}{
		TotalInterest:      am.TotalInterest.String(),
		TotalPayable:       am.TotalPayable.String(),
		MonthlyInstallment: am.MonthlyInstallment.String(),
	})
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID        int64  `json:"member_id"`
		Principal       string `json:"principal"`
		RatePercent     string `json:"rate_percent"`
		TermMonths      int    `json:"term_months"`
		OriginationDate string `json:"origination_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	principal, err := core.ParseMoney(req.Principal)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid principal amount")
		return
	}
	rateBps, err := core.PercentToBps(req.RatePercent)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid interest rate")
		return
	}
	origination, err := parseDate(req.OriginationDate)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid origination date, expected YYYY-MM-DD")
		return
	}

	loan, err := s.loans.CreateLoan(r.Context(), req.MemberID, principal, rateBps, req.TermMonths, origination)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanResponse(loan))
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	loan, err := s.loans.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.loans.ListLoans(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		resp = append(resp, toLoanResponse(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		InstallmentNumber int    `json:"installment_number"`
		PrincipalPortion  string `json:"principal_portion"`
		InterestPortion   string `json:"interest_portion"`
		PaymentDate       string `json:"payment_date"`
		Status            string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	principalPortion, err := core.ParseMoney(req.PrincipalPortion)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid principal portion")
		return
	}
	// Interest may be zero; an empty field means no interest share.
	interestPortion, err := parseOptionalMoney(req.InterestPortion)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid interest portion")
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid payment date, expected YYYY-MM-DD")
		return
	}
	status := core.PaymentStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid payment status")
		return
	}

	result, err := s.loans.RecordPayment(r.Context(), loanID, req.InstallmentNumber, principalPortion, interestPortion, paymentDate, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if result.Warning != "" {
		slog.WarnContext(r.Context(), "Payment recorded with invariant warning",
			"loan_id", loanID, "warning", result.Warning)
	}

	writeJSON(w, http.StatusCreated, struct {
		Payment paymentResponse `json:"payment"`
		Loan    loanResponse    `json:"loan"`
		Warning string          `json:"warning,omitempty"`
	}{toPaymentResponse(result.Payment), toLoanResponse(result.Loan), result.Warning})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := s.loans.ListPayments(r.Context(), loanID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Absent fields keep their stored value; merge happens in core.
	var req struct {
		InstallmentNumber *int    `json:"installment_number"`
		PrincipalPortion  *string `json:"principal_portion"`
		InterestPortion   *string `json:"interest_portion"`
		PaymentDate       *string `json:"payment_date"`
		Status            *string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var patch core.PaymentPatch
	patch.InstallmentNumber = req.InstallmentNumber
	if req.PrincipalPortion != nil {
		m, err := core.ParseMoney(*req.PrincipalPortion)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid principal portion")
			return
		}
		patch.PrincipalPortion = &m
	}
	if req.InterestPortion != nil {
		m, err := parseOptionalMoney(*req.InterestPortion)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid interest portion")
			return
		}
		patch.InterestPortion = &m
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
		st := core.PaymentStatus(*req.Status)
		if !st.Valid() {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid payment status")
			return
		}
		patch.Status = &st
	}

	result, err := s.loans.UpdatePayment(r.Context(), loanID, paymentID, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Payment paymentResponse `json:"payment"`
		Loan    loanResponse    `json:"loan"`
		Warning string          `json:"warning,omitempty"`
	}{toPaymentResponse(result.Payment), toLoanResponse(result.Loan), result.Warning})
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.loans.DeletePayment(r.Context(), loanID, paymentID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		NewOutstandingBalance string `json:"new_outstanding_balance"`
		Warning               string `json:"warning,omitempty"`
	}{result.NewOutstandingBalance.String(), result.Warning})
}
