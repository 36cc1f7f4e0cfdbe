//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/underwriting/pkg/money"
	"github.com/bibbank/underwriting/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(context.Background(), t)
	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	return pc
}

func approvedApp(t *testing.T) model.LoanApplication {
	t.Helper()
	now := testutil.TestNow
	return model.ReconstructLoanApplication(model.LoanApplicationSnapshot{
		ID:              uuid.NewString(),
		BorrowerID:      testutil.TestBorrowerID.String(),
		LoanType:        valueobject.LoanTypePersonal,
		RequestedAmount: testutil.D("1200"),
		Currency:        money.USD,
		TermMonths:      12,
		Purpose:         "laptop",
		State:           valueobject.StateApproved,
		Assessment: &model.Assessment{
			IsEligible:              true,
			RiskScore:               22,
			RecommendedAmount:       testutil.D("1200"),
			RecommendedInterestRate: testutil.D("13"),
			EvaluatedAt:             now,
		},
		ApprovedAmount:  testutil.D("1200"),
		ApprovedRate:    testutil.D("12"),
		ApprovedPayment: testutil.D("106.62"),
		DecidedBy:       "underwriter-1",
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func TestPostgresRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	pc := setupDB(t)

	apps := postgres.NewLoanApplicationRepo(pc.Pool)
	accounts := postgres.NewLoanAccountRepo(pc.Pool)
	store := postgres.NewDisbursementStore(pc.Pool)
	profiles := postgres.NewProfileReader(pc.Pool)
	cases := postgres.NewCollectionCaseRepo(pc.Pool)

	t.Run("application round trip and optimistic lock", func(t *testing.T) {
		pc.Truncate(t, "loan_applications")
		app := approvedApp(t)
		require.NoError(t, apps.Save(ctx, app))

		got, err := apps.FindByID(ctx, app.ID())
		require.NoError(t, err)
		assert.Equal(t, valueobject.StateApproved, got.State())
		assert.Equal(t, "USD", got.Currency().Code())
		require.NotNil(t, got.Assessment())
		assert.Equal(t, valueobject.RiskScore(22), got.Assessment().RiskScore)
		testutil.AssertDecimalEqual(t, testutil.D("106.62"), got.ApprovedPayment())

		// Saving the same version twice: the second write is stale.
		require.NoError(t, apps.Save(ctx, got))
		assert.ErrorIs(t, apps.Save(ctx, got), model.ErrConcurrentModification)

		list, err := apps.FindByBorrowerID(ctx, testutil.TestBorrowerID.String())
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = apps.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("disbursement is atomic and happens once", func(t *testing.T) {
		pc.Truncate(t, "loan_applications", "loan_accounts")
		app := approvedApp(t)
		require.NoError(t, apps.Save(ctx, app))
		app, err := apps.FindByID(ctx, app.ID())
		require.NoError(t, err)

		start := testutil.TestNow
		acct, err := model.NewLoanAccount(app, model.DisbursementRequest{}, start)
		require.NoError(t, err)
		acct, err = acct.Activate(start)
		require.NoError(t, err)
		disbursed, err := app.MarkDisbursed(acct.ID(), start)
		require.NoError(t, err)

		require.NoError(t, store.CommitDisbursement(ctx, disbursed, acct))
		assert.ErrorIs(t, store.CommitDisbursement(ctx, disbursed, acct), model.ErrAlreadyDisbursed)

		stored, err := accounts.FindByApplicationID(ctx, app.ID())
		require.NoError(t, err)
		assert.Equal(t, acct.ID(), stored.ID())
		assert.Equal(t, valueobject.StateActive, stored.State())
		require.Len(t, stored.Schedule(), 12)
		assert.True(t, stored.Schedule()[11].RunningBalance.IsZero())
		assert.True(t, stored.NextPaymentDate().Equal(acct.NextPaymentDate()))

		reloaded, err := apps.FindByID(ctx, app.ID())
		require.NoError(t, err)
		assert.Equal(t, valueobject.StateDisbursed, reloaded.State())
		assert.Equal(t, acct.ID(), reloaded.AccountID())
	})

	t.Run("payments persist and overdue accounts are found", func(t *testing.T) {
		pc.Truncate(t, "loan_applications", "loan_accounts")
		app := approvedApp(t)
		start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
		acct, err := model.NewLoanAccount(app, model.DisbursementRequest{}, start)
		require.NoError(t, err)
		acct, err = acct.Activate(start)
		require.NoError(t, err)
		require.NoError(t, accounts.Save(ctx, acct))

		acct, err = accounts.FindByID(ctx, acct.ID())
		require.NoError(t, err)
		paid, err := acct.ApplyPayment("ref-1", acct.MonthlyPayment(), start.AddDate(0, 1, 0))
		require.NoError(t, err)
		require.NoError(t, accounts.Save(ctx, paid))
		assert.ErrorIs(t, accounts.Save(ctx, paid), model.ErrConcurrentModification)

		stored, err := accounts.FindByID(ctx, acct.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, stored.PaidInstallments())
		assert.Equal(t, "2025-03-15", stored.NextPaymentDate().Format("2006-01-02"))

		overdue, err := accounts.FindOverdue(ctx, time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC), 90)
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Len(t, overdue[0].Schedule(), 12)

		none, err := accounts.FindOverdue(ctx, time.Date(2025, time.June, 13, 12, 0, 0, 0, time.UTC), 90)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("collection cases for defaulted accounts", func(t *testing.T) {
		pc.Truncate(t, "loan_applications", "loan_accounts")
		start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
		asOf := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		acct, err := model.NewLoanAccount(approvedApp(t), model.DisbursementRequest{}, start)
		require.NoError(t, err)
		acct, err = acct.Activate(start)
		require.NoError(t, err)
		require.NoError(t, accounts.Save(ctx, acct))
		acct, err = accounts.FindByID(ctx, acct.ID())
		require.NoError(t, err)
		defaulted, err := acct.MarkDefaulted("payment overdue by 106 days", asOf)
		require.NoError(t, err)
		require.NoError(t, accounts.Save(ctx, defaulted))

		opened, err := model.OpenCollectionCase(defaulted, asOf)
		require.NoError(t, err)
		require.NoError(t, cases.Save(ctx, opened))

		assigned, err := opened.Assign("agent-1", asOf.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, cases.Save(ctx, assigned.AddNote("left voicemail", asOf.Add(time.Hour))))

		got, err := cases.FindByAccountID(ctx, defaulted.ID())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, opened.ID(), got[0].ID())
		assert.Equal(t, valueobject.CollectionCaseStatusInProgress, got[0].Status())
		assert.Equal(t, "agent-1", got[0].AssignedTo())
		assert.Equal(t, []string{"left voicemail"}, got[0].Notes())
		assert.Equal(t, opened.DaysOverdue(), got[0].DaysOverdue())
		testutil.AssertDecimalEqual(t, opened.Outstanding(), got[0].Outstanding())

		none, err := cases.FindByAccountID(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("profiles", func(t *testing.T) {
		pc.Truncate(t, "borrower_profiles", "savings_profiles")
		_, err := pc.Pool.Exec(ctx, `
			INSERT INTO borrower_profiles (borrower_id, monthly_income, credit_score, employment_status, existing_loan_count, total_active_debt)
			VALUES ('b-1', 2000000, 750, 'employed', 0, 0)`)
		require.NoError(t, err)

		p, err := profiles.BorrowerProfile(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, 750, p.CreditScore)
		assert.True(t, p.EmploymentStatus.Known())
		testutil.AssertDecimalEqual(t, testutil.D("2000000"), p.MonthlyIncome)

		s, err := profiles.SavingsProfile(ctx, "b-1")
		require.NoError(t, err)
		assert.True(t, s.Balance.IsZero())

		_, err = profiles.BorrowerProfile(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
