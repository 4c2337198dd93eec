package journey

import (
	"context"
	"fmt"
	"strings"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/underwriting"
	"loan-origination/internal/event"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/currency"
)

// collectDocuments walks the KYC sequence in order. Each confirmed
// upload unlocks the next document; once all three are in, policy
// evaluation runs inside the same turn.
func (o *Orchestrator) collectDocuments(ctx context.Context, state *ApplicationState, message string) (string, error) {
	if isNegative(message) {
		return fmt.Sprintf("We cannot proceed without your %s. Please upload it to continue.", state.nextDocument()), nil
	}
	if !isUploadConfirmation(message) {
		return fmt.Sprintf("Waiting on your %s. Reply 'uploaded' once it is attached.", state.nextDocument()), nil
	}

	received := state.nextDocument()
	switch received {
	case DocumentIDProof:
		state.IDProofReceived = true
	case DocumentAddressProof:
		state.AddressProofReceived = true
	case DocumentIncomeProof:
		state.IncomeProofReceived = true
	}
	o.logger.InfoContext(ctx, "KYC document received", "sessionID", state.SessionID, "document", received)
	o.publishDocumentReceived(ctx, state, received)

	if !state.documentsComplete() {
		return fmt.Sprintf("%s received. Please upload your %s next.", received, state.nextDocument()), nil
	}

	state.Stage = StagePolicyEvaluation
	reply, err := o.runEvaluation(ctx, state)
	if err != nil {
		return "", err
	}
	return "All documents received. " + reply, nil
}

func (o *Orchestrator) publishDocumentReceived(ctx context.Context, state *ApplicationState, documentType string) {
	remaining := 0
	for _, got := range []bool{state.IDProofReceived, state.AddressProofReceived, state.IncomeProofReceived} {
		if !got {
			remaining++
		}
	}
	payload := event.DocumentReceivedEvent{
		SessionID:    state.SessionID,
		CustomerID:   state.CustomerID,
		DocumentType: documentType,
		Remaining:    remaining,
		Timestamp:    o.now(),
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := o.publisher.PublishDocumentReceived(detached, payload); err != nil {
			o.logger.Error("Failed to publish document event", "sessionID", payload.SessionID, "error", err)
		}
	}()
}

func isUploadConfirmation(message string) bool {
	if isAffirmative(message) {
		return true
	}
	lower := strings.ToLower(message)
	for _, marker := range []string{"upload", "attach", "done", "sent", "shared"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// runEvaluation applies the threshold rules and, when they pass, the
// band classification that decides between straight approval and manual
// review.
func (o *Orchestrator) runEvaluation(ctx context.Context, state *ApplicationState) (string, error) {
	if state.CreditScore == nil || state.MonthlyIncome == nil || state.ExistingObligation == nil ||
		state.RequestedAmount == nil || state.TenureMonths == nil || state.InterestRate == nil {
		return "", fmt.Errorf("%w: evaluation reached with an incomplete profile for session %s",
			apperrors.ErrInternalServer, state.SessionID)
	}

	input := underwriting.EvaluationInput{
		CreditScore:        *state.CreditScore,
		MonthlyIncome:      *state.MonthlyIncome,
		ExistingObligation: *state.ExistingObligation,
		RequestedAmount:    *state.RequestedAmount,
		TenureMonths:       *state.TenureMonths,
		AnnualRate:         *state.InterestRate,
	}

	result := o.engine.Evaluate(input)
	state.Evaluation = &result

	o.logger.InfoContext(ctx, "Policy evaluation complete", "sessionID", state.SessionID,
		"approved", result.Approved, "ratio", result.ObligationRatio, "reason", result.Reason)

	if result.Approved {
		return o.disposeApproved(ctx, state, result)
	}

	if result.SuggestedAmount != nil && state.CounterOfferRetries == 0 {
		state.Stage = StageCounterOffer
		state.Decision = "COUNTER_OFFER"
		state.DecisionReason = result.Reason
		o.observeDecision(ctx, state, "counter_offer", o.publisher.PublishCounterOffer, "loan.decision.counter_offer")
		return fmt.Sprintf(
			"Rs %s stretches your repayment capacity (obligation ratio %.2f%%). We can offer Rs %s instead at the same terms. Accept? (yes/no)",
			currency.Whole(*state.RequestedAmount), result.ObligationRatio*100,
			currency.Whole(*result.SuggestedAmount)), nil
	}

	state.Stage = StageEnd
	state.Decision = string(underwriting.DecisionRejected)
	state.DecisionReason = result.Reason
	o.observeDecision(ctx, state, "rejected", o.publisher.PublishDecisionRejected, "loan.decision.rejected")
	return fmt.Sprintf("We are unable to approve this application: %s. Say 'restart' to try different terms.",
		result.Reason), nil
}

func (o *Orchestrator) disposeApproved(ctx context.Context, state *ApplicationState, result underwriting.EvaluationResult) (string, error) {
	decision, reason := o.bands.Classify(result.CreditScore, result.ObligationRatio)
	state.DecisionReason = reason

	switch decision {
	case underwriting.DecisionApproved:
		return o.bookEvaluatedLoan(ctx, state, result)

	case underwriting.DecisionReferred:
		state.Stage = StageEnd
		state.Decision = string(underwriting.DecisionReferred)
		o.observeDecision(ctx, state, "referred", o.publisher.PublishDecisionReferred, "loan.decision.referred")
		return "Your application qualifies but needs a manual review. Our credit team will reach out within 2 working days.", nil

	default:
		state.Stage = StageEnd
		state.Decision = string(underwriting.DecisionRejected)
		o.observeDecision(ctx, state, "rejected", o.publisher.PublishDecisionRejected, "loan.decision.rejected")
		return fmt.Sprintf("We are unable to approve this application: %s.", reason), nil
	}
}

func (o *Orchestrator) bookEvaluatedLoan(ctx context.Context, state *ApplicationState, result underwriting.EvaluationResult) (string, error) {
	amount := *state.RequestedAmount
	rate := *state.InterestRate
	months := *state.TenureMonths

	created, err := o.findOrRecordLoan(ctx, state, amount, rate, months, result.EMI, loan.ApprovalEvaluated)
	if err != nil {
		return "", err
	}

	state.LoanID = created.LoanID
	state.EligibleAmount = &amount
	state.Decision = string(underwriting.DecisionApproved)
	state.Stage = StageSanctioned

	o.issueSanction(ctx, state, created)
	o.observeDecision(ctx, state, "approved", o.publisher.PublishDecisionApproved, "loan.decision.approved")

	reply := fmt.Sprintf(
		"Congratulations! Loan %s is approved: Rs %s at %s%% p.a. over %d months, EMI Rs %s (obligation ratio %.2f%%).",
		created.LoanID, currency.Whole(amount), currency.Rate(rate), months, currency.Money(result.EMI),
		result.ObligationRatio*100)
	if state.SanctionDocumentRef != "" {
		reply += fmt.Sprintf(" Your sanction letter is ready (ref %s).", state.SanctionDocumentRef)
	} else {
		reply += " Your sanction letter will be shared shortly."
	}
	return reply, nil
}

// handleCounterOffer processes the applicant's answer to a suggested
// lower amount. Acceptance substitutes the suggestion and re-runs
// evaluation exactly once; a second failure is a terminal reject.
func (o *Orchestrator) handleCounterOffer(ctx context.Context, state *ApplicationState, message string) (string, error) {
	switch {
	case isAffirmative(message):
		if state.Evaluation == nil || state.Evaluation.SuggestedAmount == nil {
			return "", fmt.Errorf("counter-offer stage reached without a suggested amount for session %s", state.SessionID)
		}
		state.CounterOfferRetries++
		state.RequestedAmount = cloneFloat(state.Evaluation.SuggestedAmount)
		state.Stage = StagePolicyEvaluation
		return o.runEvaluation(ctx, state)

	case isNegative(message):
		state.Stage = StageEnd
		state.Decision = "DECLINED"
		state.DecisionReason = "applicant declined the counter-offer"
		o.observeDecision(ctx, state, "declined", o.publisher.PublishOfferDeclined, "loan.offer.declined")
		return "Understood. The application is closed, say 'restart' if you would like different terms.", nil

	default:
		return "Please reply yes to accept the revised amount or no to decline.", nil
	}
}
