// Package metrics records underwriting business metrics through the
// OpenTelemetry metric API.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

const instrumentationName = "github.com/bibbank/underwriting"

// Recorder implements port.MetricsRecorder.
type Recorder struct {
	evaluations   metric.Int64Counter
	riskScores    metric.Int64Histogram
	transitions   metric.Int64Counter
	disbursements metric.Int64Counter
	principal     metric.Float64Counter
}

// NewRecorder creates the instruments on a meter from provider.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(instrumentationName)

	evaluations, err := meter.Int64Counter("underwriting_evaluations_total",
		metric.WithDescription("Loan evaluations by loan type and outcome"))
	if err != nil {
		return nil, fmt.Errorf("metrics: evaluations counter: %w", err)
	}
	riskScores, err := meter.Int64Histogram("underwriting_risk_score",
		metric.WithDescription("Distribution of aggregate risk scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100))
	if err != nil {
		return nil, fmt.Errorf("metrics: risk score histogram: %w", err)
	}
	transitions, err := meter.Int64Counter("underwriting_state_transitions_total",
		metric.WithDescription("Lifecycle transitions by entity and target state"))
	if err != nil {
		return nil, fmt.Errorf("metrics: transitions counter: %w", err)
	}
	disbursements, err := meter.Int64Counter("underwriting_disbursements_total",
		metric.WithDescription("Loans disbursed"))
	if err != nil {
		return nil, fmt.Errorf("metrics: disbursements counter: %w", err)
	}
	principal, err := meter.Float64Counter("underwriting_disbursed_principal",
		metric.WithDescription("Principal disbursed, in currency units"))
	if err != nil {
		return nil, fmt.Errorf("metrics: principal counter: %w", err)
	}

	return &Recorder{
		evaluations:   evaluations,
		riskScores:    riskScores,
		transitions:   transitions,
		disbursements: disbursements,
		principal:     principal,
	}, nil
}

func (r *Recorder) RecordEvaluation(ctx context.Context, loanType valueobject.LoanType, eligible bool, risk valueobject.RiskScore) {
	attrs := metric.WithAttributes(
		attribute.String("loan_type", loanType.String()),
		attribute.Bool("eligible", eligible),
	)
	r.evaluations.Add(ctx, 1, attrs)
	r.riskScores.Record(ctx, int64(risk), metric.WithAttributes(attribute.String("loan_type", loanType.String())))
}

func (r *Recorder) RecordTransition(ctx context.Context, entityType string, to valueobject.LifecycleState) {
	r.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entityType),
		attribute.String("state", to.String()),
	))
}

// RecordDisbursement counts the loan and adds its principal. The float
// conversion is for the metric only.
func (r *Recorder) RecordDisbursement(ctx context.Context, acct model.LoanAccount) {
	attrs := metric.WithAttributes(attribute.String("currency", acct.Currency().Code()))
	r.disbursements.Add(ctx, 1, attrs)
	r.principal.Add(ctx, acct.Principal().InexactFloat64(), attrs)
}
