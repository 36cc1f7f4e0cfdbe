package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// Emitter delivers the after-commit side effects of a use case: domain
// events, audit records and metrics. State is already persisted when it
// runs, so failures are logged and never undo the operation.
type Emitter struct {
	publisher port.EventPublisher
	audit     port.AuditSink
	metrics   port.MetricsRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewEmitter wires the side-effect collaborators. A nil metrics recorder or
// logger is replaced by a no-op.
func NewEmitter(publisher port.EventPublisher, audit port.AuditSink, metrics port.MetricsRecorder, logger *slog.Logger) *Emitter {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		publisher: publisher,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to timestamp transitions.
func (e *Emitter) WithClock(now func() time.Time) *Emitter {
	next := *e
	next.now = now
	return &next
}

func (e *Emitter) publish(ctx context.Context, events []event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, events...); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish domain events",
			slog.Int("count", len(events)),
			slog.String("first_type", events[0].EventType()),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Emitter) record(ctx context.Context, records ...port.AuditRecord) {
	for _, rec := range records {
		if err := e.audit.Record(ctx, rec); err != nil {
			e.logger.ErrorContext(ctx, "failed to write audit record",
				slog.String("action", rec.Action),
				slog.String("entity_id", rec.EntityID),
				slog.String("error", err.Error()),
			)
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(context.Context, valueobject.LoanType, bool, valueobject.RiskScore) {}
func (nopMetrics) RecordTransition(context.Context, string, valueobject.LifecycleState)               {}
func (nopMetrics) RecordDisbursement(context.Context, model.LoanAccount)                               {}
