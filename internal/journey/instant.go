package journey

import (
	"context"
	"errors"
	"fmt"
	"math"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/offer"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/event"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/currency"
)

// quoteInstantOffer switches the session onto the pre-approved path: a
// standing offer skips full evaluation, the eligible amount is capped at
// the offer limit.
func (o *Orchestrator) quoteInstantOffer(ctx context.Context, state *ApplicationState, best *offer.Offer) (string, error) {
	eligible := math.Min(*state.RequestedAmount, best.MaxAmount)

	if state.TenureMonths == nil {
		state.TenureMonths = intPtr(defaultTenureMonths)
	}

	emi, err := o.installmentFor(eligible, best.BaseInterest, *state.TenureMonths)
	if err != nil {
		return "", err
	}

	state.InstantPath = true
	state.OfferID = best.OfferID
	state.InterestRate = floatPtr(best.BaseInterest)
	state.ProcessingFeePct = floatPtr(best.ProcessingFeePct)
	state.EligibleAmount = &eligible
	state.Stage = StageOfferSelection

	o.logger.InfoContext(ctx, "Instant offer quoted", "sessionID", state.SessionID,
		"offerID", best.OfferID, "eligible", eligible)

	capped := ""
	if eligible < *state.RequestedAmount {
		capped = fmt.Sprintf(" (your pre-approved limit caps the requested Rs %s)", currency.Whole(*state.RequestedAmount))
	}
	return fmt.Sprintf(
		"Good news! You are pre-approved for Rs %s%s at %s%% p.a. over %d months, EMI Rs %s. Shall I book it? (yes/no)",
		currency.Whole(eligible), capped, currency.Rate(best.BaseInterest), *state.TenureMonths, currency.Money(emi)), nil
}

// selectOffer handles the confirmation answer. On the instant path a yes
// books the loan immediately; on the detailed path it moves to document
// collection.
func (o *Orchestrator) selectOffer(ctx context.Context, state *ApplicationState, message string) (string, error) {
	switch {
	case isAffirmative(message):
		if state.InstantPath {
			return o.bookInstantLoan(ctx, state)
		}
		state.Stage = StageDocumentCollection
		return fmt.Sprintf("Great. We need three documents for KYC. Please upload your %s first.", state.nextDocument()), nil

	case isNegative(message):
		state.Stage = StageEnd
		state.Decision = "DECLINED"
		state.DecisionReason = "applicant declined the offer"
		o.publishDecision(ctx, state, o.publisher.PublishOfferDeclined, "loan.offer.declined")
		return "No problem, the offer stands for now. Say 'restart' if you change your mind.", nil

	default:
		return "Please reply yes to proceed or no to decline.", nil
	}
}

func (o *Orchestrator) bookInstantLoan(ctx context.Context, state *ApplicationState) (string, error) {
	amount := *state.EligibleAmount
	rate := *state.InterestRate
	months := *state.TenureMonths

	emi, err := o.installmentFor(amount, rate, months)
	if err != nil {
		return "", err
	}

	created, err := o.findOrRecordLoan(ctx, state, amount, rate, months, emi, loan.ApprovalInstant)
	if err != nil {
		return "", err
	}

	state.LoanID = created.LoanID
	state.Decision = string(loan.StatusApproved)
	state.DecisionReason = "pre-approved offer accepted"
	state.Stage = StageSanctioned

	o.issueSanction(ctx, state, created)
	o.observeDecision(ctx, state, "approved", o.publisher.PublishDecisionApproved, "loan.decision.approved")

	reply := fmt.Sprintf(
		"Congratulations! Loan %s is booked: Rs %s at %s%% p.a. over %d months, EMI Rs %s.",
		created.LoanID, currency.Whole(amount), currency.Rate(rate), months, currency.Money(emi))
	if state.SanctionDocumentRef != "" {
		reply += fmt.Sprintf(" Your sanction letter is ready (ref %s).", state.SanctionDocumentRef)
	} else {
		reply += " Your sanction letter will be shared shortly."
	}
	return reply, nil
}

// issueSanction generates and stores the sanction letter. The loan
// decision is already persisted; a failure here only delays the letter,
// so errors are logged and the document reference stays unset.
func (o *Orchestrator) issueSanction(ctx context.Context, state *ApplicationState, l *loan.Loan) {
	// A replayed booking turn may reuse a loan whose letter already exists.
	if l.SanctionDocumentRef != nil {
		state.SanctionDocumentRef = *l.SanctionDocumentRef
		return
	}

	cust, err := o.customers.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		o.logger.ErrorContext(ctx, "Sanction generation skipped, customer lookup failed",
			"loanID", l.LoanID, "error", err)
		return
	}

	schedule, err := amortization.BuildSchedule(l.ApprovedAmount, l.InterestRate, l.TenureMonths, l.EMI)
	if err != nil {
		o.logger.ErrorContext(ctx, "Sanction generation skipped, schedule failed",
			"loanID", l.LoanID, "error", err)
		return
	}

	feePct := defaultProcessingFeePct
	if state.ProcessingFeePct != nil {
		feePct = *state.ProcessingFeePct
	}
	issuedAt := o.now()

	content, err := sanction.Generate(sanction.Input{
		Loan:             l,
		Customer:         cust,
		Schedule:         schedule,
		ProcessingFeePct: feePct,
		GeneratedAt:      issuedAt,
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "Sanction generation failed", "loanID", l.LoanID, "error", err)
		return
	}

	ref := sanction.DocumentRef(l.LoanID)
	if err := o.documents.Put(ctx, ref, content); err != nil {
		o.logger.ErrorContext(ctx, "Failed to store sanction document", "loanID", l.LoanID, "error", err)
		return
	}

	// The reference is attached only after the document is safely stored.
	if err := o.loans.AttachSanctionDocument(ctx, l.LoanID, ref); err != nil {
		if errors.Is(err, apperrors.ErrDocumentAlreadySet) {
			state.SanctionDocumentRef = ref
			return
		}
		o.logger.ErrorContext(ctx, "Failed to attach sanction document reference",
			"loanID", l.LoanID, "error", err)
		return
	}
	state.SanctionDocumentRef = ref

	sanctionEvent := event.SanctionGeneratedEvent{
		LoanID:      l.LoanID,
		SessionID:   state.SessionID,
		CustomerID:  l.CustomerID,
		DocumentRef: ref,
		ValidUntil:  issuedAt.AddDate(0, 0, 7),
		Timestamp:   issuedAt,
	}
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := o.publisher.PublishSanctionGenerated(detached, sanctionEvent); err != nil {
			o.logger.Error("Failed to publish sanction event", "loanID", sanctionEvent.LoanID, "error", err)
		}
	}()
}

func (o *Orchestrator) observeDecision(ctx context.Context, state *ApplicationState, outcome string, publish func(context.Context, event.DecisionPayload) error, routing string) {
	o.publishDecision(ctx, state, publish, routing)
	monitoring.ObserveDecision(outcome)
}
