package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
	"github.com/bibbank/underwriting/pkg/testutil"
)

// ledger is an in-memory stand-in for the database: it enforces one account
// per application the way the unique constraint does.
type ledger struct {
	mu       sync.Mutex
	apps     map[string]model.LoanApplication
	accounts map[string]model.LoanAccount
}

func newLedger(apps ...model.LoanApplication) *ledger {
	l := &ledger{apps: map[string]model.LoanApplication{}, accounts: map[string]model.LoanAccount{}}
	for _, a := range apps {
		l.apps[a.ID()] = a
	}
	return l
}

func (l *ledger) appRepo() *mockLoanApplicationRepository {
	return &mockLoanApplicationRepository{
		findByIDFunc: func(ctx context.Context, id string) (model.LoanApplication, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			app, ok := l.apps[id]
			if !ok {
				return model.LoanApplication{}, model.ErrNotFound
			}
			return app, nil
		},
	}
}

func (l *ledger) acctRepo() *mockLoanAccountRepository {
	return &mockLoanAccountRepository{
		findByApplicationIDFunc: func(ctx context.Context, applicationID string) (model.LoanAccount, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			acct, ok := l.accounts[applicationID]
			if !ok {
				return model.LoanAccount{}, model.ErrNotFound
			}
			return acct, nil
		},
	}
}

func (l *ledger) store() *mockDisbursementStore {
	return &mockDisbursementStore{
		commitFunc: func(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			if _, exists := l.accounts[app.ID()]; exists {
				return model.ErrAlreadyDisbursed
			}
			l.apps[app.ID()] = app.ClearEvents()
			l.accounts[app.ID()] = acct.ClearEvents()
			return nil
		},
	}
}

func newDisburseUseCase(l *ledger, fx *sideEffects) *usecase.DisburseLoanUseCase {
	return usecase.NewDisburseLoanUseCase(l.appRepo(), l.acctRepo(), l.store(), fx.emitter.WithClock(testutil.FixedClock(now)))
}

func TestDisburseLoan_Execute(t *testing.T) {
	t.Run("opens an active account with a schedule", func(t *testing.T) {
		l := newLedger(approvedApplication())
		fx := newSideEffects()
		uc := newDisburseUseCase(l, fx)

		resp, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{
			ApplicationID:    applicationID,
			DisbursementDate: now,
			PerformedBy:      "servicing-1",
		})

		require.NoError(t, err)
		assert.Regexp(t, `^LN-20250115-[0-9A-F]{10}$`, resp.AccountNumber)
		testutil.AssertDecimalEqual(t, testutil.D("1200"), resp.PrincipalAmount)
		testutil.AssertDecimalEqual(t, testutil.D("12"), resp.InterestRate)
		testutil.AssertDecimalEqual(t, model.MonthlyPayment(testutil.D("1200"), testutil.D("12"), 12, money.USD), resp.MonthlyPayment)
		assert.Equal(t, "ACTIVE", resp.State)
		assert.Equal(t, now, resp.StartDate)
		assert.Equal(t, now.AddDate(0, 1, 0), resp.NextPaymentDate)
		assert.Equal(t, now.AddDate(0, 12, 0), resp.MaturityDate)
		require.Len(t, resp.InitialSchedule, 12)
		assert.True(t, resp.InitialSchedule[11].RunningBalance.IsZero())

		stored := l.apps[applicationID]
		assert.True(t, stored.State().Equal(valueobject.StateDisbursed))
		assert.Equal(t, resp.AccountID, stored.AccountID())

		assert.Equal(t, []string{
			event.TypeApplicationDisbursed,
			event.TypeLoanDisbursed,
			event.TypeLoanActivated,
		}, fx.publisher.types())
		require.Len(t, fx.audit.records, 2)
		assert.Equal(t, "APPROVED", fx.audit.records[0].OldValues["state"])
		assert.Equal(t, "DISBURSED", fx.audit.records[0].NewValues["state"])
		assert.Equal(t, "servicing-1", fx.audit.records[1].PerformedBy)
		assert.Equal(t, "account.opened", fx.audit.records[1].Action)
		assert.Equal(t, "106.62", fx.audit.records[1].NewValues["approved_monthly_payment"])
		assert.Equal(t, resp.MonthlyPayment.String(), fx.audit.records[1].NewValues["monthly_payment"])
		assert.Equal(t, 1, fx.metrics.disbursements)
	})

	t.Run("a second disbursement fails and leaves the account alone", func(t *testing.T) {
		l := newLedger(approvedApplication())
		uc := newDisburseUseCase(l, newSideEffects())
		req := dto.DisburseLoanRequest{ApplicationID: applicationID, DisbursementDate: now}

		first, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		original := l.accounts[applicationID]

		_, err = uc.Execute(context.Background(), req)

		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrAlreadyDisbursed))
		assert.Len(t, l.accounts, 1)
		assert.Equal(t, first.AccountID, l.accounts[applicationID].ID())
		assert.Equal(t, original.Snapshot(), l.accounts[applicationID].Snapshot())
	})

	t.Run("concurrent disbursements create one account", func(t *testing.T) {
		l := newLedger(approvedApplication())
		uc := newDisburseUseCase(l, newSideEffects())
		req := dto.DisburseLoanRequest{ApplicationID: applicationID, DisbursementDate: now}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Execute(context.Background(), req)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, model.ErrAlreadyDisbursed):
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, 7, conflicts)
		assert.Len(t, l.accounts, 1)
	})

	t.Run("a losing commit publishes nothing", func(t *testing.T) {
		l := newLedger(approvedApplication())
		fx := newSideEffects()
		store := &mockDisbursementStore{
			commitFunc: func(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error {
				return model.ErrAlreadyDisbursed
			},
		}
		uc := usecase.NewDisburseLoanUseCase(l.appRepo(), l.acctRepo(), store, fx.emitter)

		_, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: applicationID})

		assert.True(t, errors.Is(err, model.ErrAlreadyDisbursed))
		testutil.AssertErrorContains(t, err, "commit disbursement")
		assert.Empty(t, fx.publisher.types())
		assert.Empty(t, fx.audit.records)
	})

	t.Run("partial disbursement", func(t *testing.T) {
		l := newLedger(approvedApplication())
		fx := newSideEffects()
		uc := newDisburseUseCase(l, fx)

		resp, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{
			ApplicationID: applicationID,
			Amount:        decimal.NewNullDecimal(testutil.D("600")),
		})

		require.NoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.D("600"), resp.PrincipalAmount)
		assert.Equal(t, now, resp.StartDate)

		opened := fx.audit.records[1].NewValues
		assert.Equal(t, "1200", opened["approved_amount"])
		assert.Equal(t, "600", opened["principal"])
		assert.Equal(t, "106.62", opened["approved_monthly_payment"])
		assert.Equal(t, resp.MonthlyPayment.String(), opened["monthly_payment"])
		assert.NotEqual(t, opened["approved_monthly_payment"], opened["monthly_payment"])
	})

	t.Run("override above the approved amount", func(t *testing.T) {
		l := newLedger(approvedApplication())
		store := l.store()
		uc := usecase.NewDisburseLoanUseCase(l.appRepo(), l.acctRepo(), store, newSideEffects().emitter)

		_, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{
			ApplicationID: applicationID,
			Amount:        decimal.NewNullDecimal(testutil.D("1200.01")),
		})

		assert.True(t, errors.Is(err, model.ErrAmountExceedsApproved))
		assert.Empty(t, l.accounts)
	})

	t.Run("application not approved", func(t *testing.T) {
		l := newLedger(applicationIn(valueobject.StateUnderReview))
		uc := newDisburseUseCase(l, newSideEffects())

		_, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: applicationID})

		assert.True(t, errors.Is(err, model.ErrNotApproved))
		assert.Empty(t, l.accounts)
	})

	t.Run("account lookup failure", func(t *testing.T) {
		l := newLedger(approvedApplication())
		acctRepo := &mockLoanAccountRepository{
			findByApplicationIDFunc: func(ctx context.Context, applicationID string) (model.LoanAccount, error) {
				return model.LoanAccount{}, errors.New("connection reset")
			},
		}
		uc := usecase.NewDisburseLoanUseCase(l.appRepo(), acctRepo, l.store(), newSideEffects().emitter)

		_, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: applicationID})

		testutil.AssertErrorContains(t, err, "find account")
		assert.False(t, errors.Is(err, model.ErrAlreadyDisbursed))
	})

	t.Run("next payment is one period after a month-end start", func(t *testing.T) {
		l := newLedger(approvedApplication())
		uc := newDisburseUseCase(l, newSideEffects())
		start := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

		resp, err := uc.Execute(context.Background(), dto.DisburseLoanRequest{ApplicationID: applicationID, DisbursementDate: start})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), resp.NextPaymentDate)
	})
}
