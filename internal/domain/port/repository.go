package port

import (
	"context"
	"time"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanApplicationRepository persists and retrieves loan applications.
// Save is an upsert guarded by the aggregate's version; a stale version
// fails with model.ErrConcurrentModification.
type LoanApplicationRepository interface {
	Save(ctx context.Context, app model.LoanApplication) error
	FindByID(ctx context.Context, id string) (model.LoanApplication, error)
	FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.LoanApplication, error)
}

// LoanAccountRepository persists and retrieves loan accounts with their
// schedules.
type LoanAccountRepository interface {
	Save(ctx context.Context, acct model.LoanAccount) error
	FindByID(ctx context.Context, id string) (model.LoanAccount, error)
	FindByApplicationID(ctx context.Context, applicationID string) (model.LoanAccount, error)
	// FindOverdue returns active accounts whose next payment date lies more
	// than graceDays before asOf.
	FindOverdue(ctx context.Context, asOf time.Time, graceDays int) ([]model.LoanAccount, error)
}

// CollectionCaseRepository persists collection cases opened for defaulted
// accounts.
type CollectionCaseRepository interface {
	Save(ctx context.Context, c model.CollectionCase) error
	FindByAccountID(ctx context.Context, accountID string) ([]model.CollectionCase, error)
}

// DisbursementStore writes a new account and the disbursed application in
// one atomic unit. It fails with model.ErrAlreadyDisbursed when an account
// already exists for the application or the application left APPROVED in
// the meantime.
type DisbursementStore interface {
	CommitDisbursement(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error
}

// ---------------------------------------------------------------------------
// Profile lookup port
// ---------------------------------------------------------------------------

//go:generate mockgen -destination=mocks/mock_profile_reader.go -package=mocks -source=repository.go ProfileReader

// ProfileReader loads the data the underwriting engine scores.
type ProfileReader interface {
	BorrowerProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error)
	SavingsProfile(ctx context.Context, borrowerID string) (model.SavingsProfile, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Audit port
// ---------------------------------------------------------------------------

// AuditRecord captures one state change for the audit trail.
type AuditRecord struct {
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	PerformedBy string         `json:"performed_by"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// AuditSink accepts audit records.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

// ---------------------------------------------------------------------------
// Metrics port
// ---------------------------------------------------------------------------

// MetricsRecorder receives business measurements from the use cases.
type MetricsRecorder interface {
	RecordEvaluation(ctx context.Context, loanType valueobject.LoanType, eligible bool, risk valueobject.RiskScore)
	RecordTransition(ctx context.Context, entityType string, to valueobject.LifecycleState)
	RecordDisbursement(ctx context.Context, acct model.LoanAccount)
}
