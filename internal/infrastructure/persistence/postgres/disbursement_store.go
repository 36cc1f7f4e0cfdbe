package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

const accountApplicationConstraint = "loan_accounts_application_id_key"

// DisbursementStore implements port.DisbursementStore.
type DisbursementStore struct {
	pool *pgxpool.Pool
}

func NewDisbursementStore(pool *pgxpool.Pool) *DisbursementStore {
	return &DisbursementStore{pool: pool}
}

// CommitDisbursement flips the application out of APPROVED and inserts the
// account with its schedule in one transaction. The state and version guard
// on the application row and the unique application_id on loan_accounts
// each turn a concurrent second disbursement into model.ErrAlreadyDisbursed.
func (s *DisbursementStore) CommitDisbursement(ctx context.Context, app model.LoanApplication, acct model.LoanAccount) error {
	return pgutil.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE loan_applications SET
				state      = $1,
				account_id = $2,
				version    = version + 1,
				updated_at = $3
			WHERE id = $4 AND state = $5 AND version = $6`,
			app.State().String(), app.AccountID(), app.UpdatedAt().UTC(),
			app.ID(), valueobject.StateApproved.String(), app.Version(),
		)
		if err != nil {
			return fmt.Errorf("mark application disbursed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("application %s: %w", app.ID(), model.ErrAlreadyDisbursed)
		}

		if _, err := upsertAccount(ctx, tx, acct); err != nil {
			if pgutil.IsUniqueViolation(err, accountApplicationConstraint) {
				return fmt.Errorf("application %s: %w", app.ID(), model.ErrAlreadyDisbursed)
			}
			return err
		}
		return copySchedule(ctx, tx, acct)
	})
}
