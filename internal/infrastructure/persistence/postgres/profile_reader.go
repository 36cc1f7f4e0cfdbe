package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// ProfileReader implements port.ProfileReader over the borrower_profiles and
// savings_profiles read models.
type ProfileReader struct {
	pool *pgxpool.Pool
}

func NewProfileReader(pool *pgxpool.Pool) *ProfileReader {
	return &ProfileReader{pool: pool}
}

// BorrowerProfile fails with model.ErrNotFound for an unknown borrower.
func (r *ProfileReader) BorrowerProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	var (
		p          = model.BorrowerProfile{BorrowerID: borrowerID}
		employment string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT monthly_income, credit_score, employment_status, existing_loan_count, total_active_debt
		FROM borrower_profiles
		WHERE borrower_id = $1`, borrowerID,
	).Scan(&p.MonthlyIncome, &p.CreditScore, &employment, &p.ExistingLoanCount, &p.TotalActiveDebt)
	if err != nil {
		return model.BorrowerProfile{}, notFound(fmt.Errorf("scan borrower profile: %w", err), "borrower", borrowerID)
	}
	p.EmploymentStatus = valueobject.NewEmploymentStatus(employment)
	return p, nil
}

// SavingsProfile returns an empty profile for a borrower without savings.
func (r *ProfileReader) SavingsProfile(ctx context.Context, borrowerID string) (model.SavingsProfile, error) {
	var p model.SavingsProfile
	err := r.pool.QueryRow(ctx, `
		SELECT balance, total_interest_earned, account_age_months
		FROM savings_profiles
		WHERE borrower_id = $1`, borrowerID,
	).Scan(&p.Balance, &p.TotalInterestEarned, &p.AccountAgeMonths)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SavingsProfile{}, nil
	}
	if err != nil {
		return model.SavingsProfile{}, fmt.Errorf("scan savings profile: %w", err)
	}
	return p, nil
}
