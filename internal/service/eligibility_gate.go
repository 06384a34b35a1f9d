package service

import (
	"context"

	"timsbridge/internal/fiscal"
	"timsbridge/internal/model"
	"timsbridge/internal/telemetry"

	"github.com/rs/zerolog"
)

// Reasons an invoice is not sent on submit.
const (
	SkipSendOnSubmitDisabled = "sending invoices on submit is disabled"
	SkipCreditNotesDisabled  = "sending credit notes is disabled"
	SkipAlreadySent          = "invoice has already been sent to TIMS"
)

// GateDecision is the outcome of evaluating an invoice on submit.
type GateDecision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// EligibilityGate decides whether submitting an invoice triggers fiscalization.
type EligibilityGate interface {
	Evaluate(inv *model.SalesInvoice, setup model.DeviceSetup) GateDecision
	// OnSubmit runs fiscalization for an eligible invoice. A non-nil error is
	// a *SubmitAbortedError: the caller must not finalize the invoice.
	OnSubmit(ctx context.Context, inv *model.SalesInvoice, setup model.DeviceSetup, actor string) (*SubmissionResult, error)
}

type eligibilityGate struct {
	submissions SubmissionService
	metrics     *telemetry.FiscalMetrics
	logger      zerolog.Logger
}

func NewEligibilityGate(submissions SubmissionService, metrics *telemetry.FiscalMetrics, logger zerolog.Logger) EligibilityGate {
	return &eligibilityGate{submissions: submissions, metrics: metrics, logger: logger}
}

func (g *eligibilityGate) Evaluate(inv *model.SalesInvoice, setup model.DeviceSetup) GateDecision {
	switch {
	case !setup.SendInvoicesOnSubmit:
		return GateDecision{Reason: SkipSendOnSubmitDisabled}
	case inv.IsReturn && !setup.SendCreditNotes:
		return GateDecision{Reason: SkipCreditNotesDisabled}
	case inv.Fiscalized:
		return GateDecision{Reason: SkipAlreadySent}
	}
	return GateDecision{Eligible: true}
}

func (g *eligibilityGate) OnSubmit(ctx context.Context, inv *model.SalesInvoice, setup model.DeviceSetup, actor string) (*SubmissionResult, error) {
	decision := g.Evaluate(inv, setup)
	g.countDecision(decision)
	if !decision.Eligible {
		g.logger.Debug().Str("invoice", inv.Name).Str("reason", decision.Reason).Msg("skipping fiscalization")
		return &SubmissionResult{Invoice: inv.Name, Outcome: OutcomeIneligible, Message: decision.Reason}, nil
	}

	result, err := g.submissions.Submit(ctx, inv.Name, setup, actor)
	if err == nil || fiscal.IsKind(err, fiscal.KindIneligible) {
		return result, nil
	}

	g.logger.Error().Err(err).
		Str("invoice", inv.Name).
		Bool("allow_submission_on_failure", setup.AllowSubmissionOnFailure).
		Msg("fiscalization failed on submit")

	if !setup.AllowSubmissionOnFailure {
		return result, &SubmitAbortedError{Cause: err}
	}
	return result, nil
}

func (g *eligibilityGate) countDecision(d GateDecision) {
	if g.metrics == nil {
		return
	}
	label := "eligible"
	if !d.Eligible {
		label = d.Reason
	}
	g.metrics.GateDecisions.WithLabelValues(label).Inc()
}
