package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/domain/loan"
)

type LoanResponse struct {
	LoanID              string                  `json:"loanId"`
	CustomerID          string                  `json:"customerId"`
	CustomerName        string                  `json:"customerName"`
	SessionID           string                  `json:"sessionId,omitempty"`
	ApprovedAmount      string                  `json:"approvedAmount"`
	InterestRate        string                  `json:"interestRate"`
	TenureMonths        int                     `json:"tenureMonths"`
	EMI                 string                  `json:"emi"`
	ApprovalType        string                  `json:"approvalType"`
	Status              string                  `json:"status"`
	ApprovedAt          time.Time               `json:"approvedAt"`
	SanctionDocumentRef *string                 `json:"sanctionDocumentRef,omitempty"`
	Schedule            []SchedulePeriodResponse `json:"schedule,omitempty"`
}

type SchedulePeriodResponse struct {
	Period      int    `json:"period"`
	Installment string `json:"installment"`
	Principal   string `json:"principal"`
	Interest    string `json:"interest"`
	Outstanding string `json:"outstanding"`
}

type ScheduleResponse struct {
	LoanID   string                   `json:"loanId"`
	Schedule []SchedulePeriodResponse `json:"schedule"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func NewLoanResponse(domainLoan *loan.Loan, schedule []amortization.Period) LoanResponse {
	resp := LoanResponse{
		LoanID:              domainLoan.LoanID,
		CustomerID:          domainLoan.CustomerID,
		CustomerName:        domainLoan.CustomerName,
		SessionID:           domainLoan.SessionID,
		ApprovedAmount:      formatMoney(domainLoan.ApprovedAmount),
		InterestRate:        decimal.NewFromFloat(domainLoan.InterestRate).String(),
		TenureMonths:        domainLoan.TenureMonths,
		EMI:                 formatMoney(domainLoan.EMI),
		ApprovalType:        string(domainLoan.ApprovalType),
		Status:              string(domainLoan.Status),
		ApprovedAt:          domainLoan.ApprovedAt,
		SanctionDocumentRef: domainLoan.SanctionDocumentRef,
	}

	if schedule != nil {
		resp.Schedule = NewScheduleResponse(domainLoan.LoanID, schedule).Schedule
	}
	return resp
}

func NewScheduleResponse(loanID string, schedule []amortization.Period) ScheduleResponse {
	periods := make([]SchedulePeriodResponse, len(schedule))
	for i, p := range schedule {
		periods[i] = SchedulePeriodResponse{
			Period:      p.Number,
			Installment: formatMoney(p.Installment),
			Principal:   formatMoney(p.Principal),
			Interest:    formatMoney(p.Interest),
			Outstanding: formatMoney(p.Outstanding),
		}
	}
	return ScheduleResponse{LoanID: loanID, Schedule: periods}
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
