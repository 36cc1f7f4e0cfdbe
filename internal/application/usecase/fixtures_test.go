package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
	"github.com/bibbank/underwriting/pkg/testutil"
)

var (
	borrowerID    = testutil.TestBorrowerID.String()
	applicationID = testutil.TestApplicationID.String()
	now           = testutil.TestNow
)

func goodBorrower(id string) model.BorrowerProfile {
	return model.BorrowerProfile{
		BorrowerID:       id,
		MonthlyIncome:    testutil.D("2000000"),
		CreditScore:      750,
		EmploymentStatus: valueobject.NewEmploymentStatus("employed"),
		TotalActiveDebt:  decimal.Zero,
	}
}

func goodSavings() model.SavingsProfile {
	return model.SavingsProfile{
		Balance:             testutil.D("2000000"),
		TotalInterestEarned: decimal.Zero,
	}
}

func applicationIn(state valueobject.LifecycleState) model.LoanApplication {
	snap := model.LoanApplicationSnapshot{
		ID:              applicationID,
		BorrowerID:      borrowerID,
		LoanType:        valueobject.LoanTypePersonal,
		RequestedAmount: testutil.D("1200"),
		Currency:        money.USD,
		TermMonths:      12,
		Purpose:         "laptop",
		State:           state,
		Version:         3,
		CreatedAt:       now.Add(-48 * time.Hour),
		UpdatedAt:       now.Add(-24 * time.Hour),
	}
	if state.Equal(valueobject.StateApproved) {
		snap.ApprovedAmount = testutil.D("1200")
		snap.ApprovedRate = testutil.D("12")
		snap.ApprovedPayment = testutil.D("106.62")
		snap.DecidedBy = "underwriter-1"
	}
	return model.ReconstructLoanApplication(snap)
}

func approvedApplication() model.LoanApplication {
	return applicationIn(valueobject.StateApproved)
}

func activeAccount(t *testing.T, start time.Time) model.LoanAccount {
	t.Helper()
	acct, err := model.NewLoanAccount(approvedApplication(), model.DisbursementRequest{DisbursementDate: start}, start)
	require.NoError(t, err)
	acct, err = acct.Activate(start)
	require.NoError(t, err)
	return acct.ClearEvents()
}
