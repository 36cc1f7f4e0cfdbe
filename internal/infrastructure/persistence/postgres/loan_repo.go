package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

const accountColumns = `
	id, application_id, borrower_id, account_number,
	principal, currency, interest_rate, term_months, monthly_payment,
	start_date, maturity_date, next_payment_date,
	running_balance, total_paid, paid_installments, installment_credit,
	state, default_reason, version, created_at, updated_at`

// LoanAccountRepo implements port.LoanAccountRepository.
type LoanAccountRepo struct {
	pool *pgxpool.Pool
}

// NewLoanAccountRepo creates a new PostgreSQL-backed loan account repository.
func NewLoanAccountRepo(pool *pgxpool.Pool) *LoanAccountRepo {
	return &LoanAccountRepo{pool: pool}
}

// Save persists an account. The amortization schedule is written only when
// the row is first inserted; it never changes afterwards.
func (r *LoanAccountRepo) Save(ctx context.Context, acct model.LoanAccount) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		inserted, err := upsertAccount(ctx, tx, acct)
		if err != nil {
			return err
		}
		if inserted {
			return copySchedule(ctx, tx, acct)
		}
		return nil
	})
}

// FindByID retrieves an account with its schedule.
func (r *LoanAccountRepo) FindByID(ctx context.Context, id string) (model.LoanAccount, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM loan_accounts WHERE id = $1`, id)
}

// FindByApplicationID retrieves the account opened for an application.
func (r *LoanAccountRepo) FindByApplicationID(ctx context.Context, applicationID string) (model.LoanAccount, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM loan_accounts WHERE application_id = $1`, applicationID)
}

// FindOverdue returns ACTIVE accounts whose next payment date falls before
// the start of the day graceDays before asOf.
func (r *LoanAccountRepo) FindOverdue(ctx context.Context, asOf time.Time, graceDays int) ([]model.LoanAccount, error) {
	y, m, d := asOf.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -graceDays)

	query := `SELECT ` + accountColumns + `
		FROM loan_accounts
		WHERE state = $1 AND next_payment_date < $2
		ORDER BY next_payment_date`
	rows, err := r.pool.Query(ctx, query, valueobject.StateActive.String(), cutoff)
	if err != nil {
		return nil, fmt.Errorf("query overdue accounts: %w", err)
	}
	snaps, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	ids := make([]string, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID
	}
	schedules, err := loadSchedules(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.LoanAccount, len(snaps))
	for i, s := range snaps {
		s.Schedule = schedules[s.ID]
		out[i] = model.ReconstructLoanAccount(s)
	}
	return out, nil
}

func (r *LoanAccountRepo) findOne(ctx context.Context, query, key string) (model.LoanAccount, error) {
	snap, err := scanAccount(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		return model.LoanAccount{}, notFound(err, "loan account", key)
	}
	schedules, err := loadSchedules(ctx, r.pool, []string{snap.ID})
	if err != nil {
		return model.LoanAccount{}, err
	}
	snap.Schedule = schedules[snap.ID]
	return model.ReconstructLoanAccount(snap), nil
}

// upsertAccount inserts or version-checks and updates the mutable columns.
// It reports whether the row was newly inserted.
func upsertAccount(ctx context.Context, q pgutil.Querier, acct model.LoanAccount) (bool, error) {
	s := acct.Snapshot()
	query := `
		INSERT INTO loan_accounts (` + accountColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			next_payment_date  = EXCLUDED.next_payment_date,
			running_balance    = EXCLUDED.running_balance,
			total_paid         = EXCLUDED.total_paid,
			paid_installments  = EXCLUDED.paid_installments,
			installment_credit = EXCLUDED.installment_credit,
			state              = EXCLUDED.state,
			default_reason     = EXCLUDED.default_reason,
			version            = loan_accounts.version + 1,
			updated_at         = EXCLUDED.updated_at
		WHERE loan_accounts.version = $19
		RETURNING (xmax = 0)
	`
	var inserted bool
	err := q.QueryRow(ctx, query,
		s.ID, s.ApplicationID, s.BorrowerID, s.AccountNumber,
		s.Principal, s.Currency.Code(), s.InterestRate, s.TermMonths, s.MonthlyPayment,
		s.StartDate.UTC(), s.MaturityDate.UTC(), nullTime(s.NextPaymentDate),
		s.RunningBalance, s.TotalPaid, s.PaidInstallments, s.InstallmentCredit,
		s.State.String(), s.DefaultReason, s.Version, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("loan account %s: %w", s.ID, model.ErrConcurrentModification)
		}
		return false, fmt.Errorf("save loan account: %w", err)
	}
	return inserted, nil
}

func copySchedule(ctx context.Context, tx pgx.Tx, acct model.LoanAccount) error {
	entries := acct.Schedule()
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{
			acct.ID(), e.InstallmentNumber, e.DueDate.UTC(),
			e.PrincipalPortion, e.InterestPortion, e.TotalAmount, e.RunningBalance,
		}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"amortization_entries"},
		[]string{"account_id", "installment_number", "due_date", "principal_portion", "interest_portion", "total_amount", "running_balance"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("save amortization schedule: %w", err)
	}
	return nil
}

func loadSchedules(ctx context.Context, q pgutil.Querier, accountIDs []string) (map[string][]model.AmortizationEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT account_id, installment_number, due_date,
		       principal_portion, interest_portion, total_amount, running_balance
		FROM amortization_entries
		WHERE account_id = ANY($1)
		ORDER BY account_id, installment_number`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("query amortization schedule: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.AmortizationEntry, len(accountIDs))
	for rows.Next() {
		var (
			accountID string
			e         model.AmortizationEntry
		)
		if err := rows.Scan(&accountID, &e.InstallmentNumber, &e.DueDate,
			&e.PrincipalPortion, &e.InterestPortion, &e.TotalAmount, &e.RunningBalance); err != nil {
			return nil, fmt.Errorf("scan amortization entry: %w", err)
		}
		e.DueDate = e.DueDate.UTC()
		out[accountID] = append(out[accountID], e)
	}
	return out, rows.Err()
}

func collectAccounts(rows pgx.Rows) ([]model.LoanAccountSnapshot, error) {
	defer rows.Close()
	var out []model.LoanAccountSnapshot
	for rows.Next() {
		s, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanAccount(s scannable) (model.LoanAccountSnapshot, error) {
	var (
		snap                 model.LoanAccountSnapshot
		currency, state      string
		nextPayment          *time.Time
		start, maturity      time.Time
		createdAt, updatedAt time.Time
	)
	err := s.Scan(
		&snap.ID, &snap.ApplicationID, &snap.BorrowerID, &snap.AccountNumber,
		&snap.Principal, &currency, &snap.InterestRate, &snap.TermMonths, &snap.MonthlyPayment,
		&start, &maturity, &nextPayment,
		&snap.RunningBalance, &snap.TotalPaid, &snap.PaidInstallments, &snap.InstallmentCredit,
		&state, &snap.DefaultReason, &snap.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.LoanAccountSnapshot{}, fmt.Errorf("scan loan account: %w", err)
	}

	if snap.Currency, err = parseCurrency(currency); err != nil {
		return model.LoanAccountSnapshot{}, err
	}
	if snap.State, err = valueobject.NewLifecycleState(state); err != nil {
		return model.LoanAccountSnapshot{}, fmt.Errorf("parse state: %w", err)
	}
	snap.StartDate = start.UTC()
	snap.MaturityDate = maturity.UTC()
	snap.NextPaymentDate = timeOrZero(nextPayment)
	snap.CreatedAt = createdAt.UTC()
	snap.UpdatedAt = updatedAt.UTC()
	return snap, nil
}
