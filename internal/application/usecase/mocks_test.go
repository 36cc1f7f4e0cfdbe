package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockLoanApplicationRepository struct {
	saveFunc     func(ctx context.Context, app model.LoanApplication) error
	findByIDFunc func(ctx context.Context, id string) (model.LoanApplication, error)
	savedApps    []model.LoanApplication
}

func (m *mockLoanApplicationRepository) Save(ctx context.Context, app model.LoanApplication) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, app)
	}
	m.savedApps = append(m.savedApps, app)
	return nil
}

func (m *mockLoanApplicationRepository) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanApplication{}, model.ErrNotFound
}

func (m *mockLoanApplicationRepository) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.LoanApplication, error) {
	return nil, nil
}

type mockLoanAccountRepository struct {
	saveFunc                func(ctx context.Context, acct model.LoanAccount) error
	findByIDFunc            func(ctx context.Context, id string) (model.LoanAccount, error)
	findByApplicationIDFunc func(ctx context.Context, applicationID string) (model.LoanAccount, error)
	findOverdueFunc         func(ctx context.Context, asOf time.Time, graceDays int) ([]model.LoanAccount, error)
	savedAccounts           []model.LoanAccount
}

func (m *mockLoanAccountRepository) Save(ctx context.Context, acct model.LoanAccount) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, acct)
	}
	m.savedAccounts = append(m.savedAccounts, acct)
	return nil
}

func (m *mockLoanAccountRepository) FindByID(ctx context.Context, id string) (model.LoanAccount, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanAccount{}, model.ErrNotFound
}

func (m *mockLoanAccountRepository) FindByApplicationID(ctx context.Context, applicationID string) (model.LoanAccount, error) {
	if m.findByApplicationIDFunc != nil {
		return m.findByApplicationIDFunc(ctx, applicationID)
	}
	return model.LoanAccount{}, model.ErrNotFound
}

func (m *mockLoanAccountRepository) FindOverdue(ctx context.Context, asOf time.Time, graceDays int) ([]model.LoanAccount, error) {
	if m.findOverdueFunc != nil {
		return m.findOverdueFunc(ctx, asOf, graceDays)
	}
	return nil, nil
}

type mockCollectionCaseRepository struct {
	saveFunc            func(ctx context.Context, c model.CollectionCase) error
	findByAccountIDFunc func(ctx context.Context, accountID string) ([]model.CollectionCase, error)
	saved               []model.CollectionCase
}

func (m *mockCollectionCaseRepository) Save(ctx context.Context, c model.CollectionCase) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	m.saved = append(m.saved, c)
	return nil
}

func (m *mockCollectionCaseRepository) FindByAccountID(ctx context.Context, accountID string) ([]model.CollectionCase, error) {
	if m.findByAccountIDFunc != nil {
		return m.findByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

type mockDisbursementStore struct {
	commitFunc func(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error
	commits    int
}

func (m *mockDisbursementStore) CommitDisbursement(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error {
	if m.commitFunc != nil {
		return m.commitFunc(ctx, app, acct)
	}
	m.commits++
	return nil
}

type mockEventPublisher struct {
	mu              sync.Mutex
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.publishedEvents))
	for i, e := range m.publishedEvents {
		out[i] = e.EventType()
	}
	return out
}

type mockAuditSink struct {
	mu         sync.Mutex
	recordFunc func(ctx context.Context, rec port.AuditRecord) error
	records    []port.AuditRecord
}

func (m *mockAuditSink) Record(ctx context.Context, rec port.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordFunc != nil {
		return m.recordFunc(ctx, rec)
	}
	m.records = append(m.records, rec)
	return nil
}

type mockMetrics struct {
	mu            sync.Mutex
	evaluations   int
	transitions   []string
	disbursements int
}

func (m *mockMetrics) RecordEvaluation(context.Context, valueobject.LoanType, bool, valueobject.RiskScore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations++
}

func (m *mockMetrics) RecordTransition(_ context.Context, entityType string, to valueobject.LifecycleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, entityType+":"+to.String())
}

func (m *mockMetrics) RecordDisbursement(context.Context, model.LoanAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disbursements++
}

type mockProfileReader struct {
	borrowerFunc func(ctx context.Context, borrowerID string) (model.BorrowerProfile, error)
	savingsFunc  func(ctx context.Context, borrowerID string) (model.SavingsProfile, error)
}

func (m *mockProfileReader) BorrowerProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	if m.borrowerFunc != nil {
		return m.borrowerFunc(ctx, borrowerID)
	}
	return goodBorrower(borrowerID), nil
}

func (m *mockProfileReader) SavingsProfile(ctx context.Context, borrowerID string) (model.SavingsProfile, error) {
	if m.savingsFunc != nil {
		return m.savingsFunc(ctx, borrowerID)
	}
	return goodSavings(), nil
}

// --- Fixtures ---

type sideEffects struct {
	publisher *mockEventPublisher
	audit     *mockAuditSink
	metrics   *mockMetrics
	emitter   *usecase.Emitter
}

func newSideEffects() *sideEffects {
	s := &sideEffects{
		publisher: &mockEventPublisher{},
		audit:     &mockAuditSink{},
		metrics:   &mockMetrics{},
	}
	s.emitter = usecase.NewEmitter(s.publisher, s.audit, s.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s
}
