package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// CollectionCaseRepo implements port.CollectionCaseRepository.
type CollectionCaseRepo struct {
	pool *pgxpool.Pool
}

// NewCollectionCaseRepo creates a new PostgreSQL-backed collection case repository.
func NewCollectionCaseRepo(pool *pgxpool.Pool) *CollectionCaseRepo {
	return &CollectionCaseRepo{pool: pool}
}

// Save upserts a case. Only the mutable columns change on conflict.
func (r *CollectionCaseRepo) Save(ctx context.Context, c model.CollectionCase) error {
	notes := c.Notes()
	if notes == nil {
		notes = []string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}

	query := `
		INSERT INTO collection_cases (
			id, account_id, borrower_id, status, reason, days_overdue,
			outstanding, assigned_to, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status      = EXCLUDED.status,
			assigned_to = EXCLUDED.assigned_to,
			notes       = EXCLUDED.notes,
			updated_at  = EXCLUDED.updated_at`
	_, err = r.pool.Exec(ctx, query,
		c.ID(), c.AccountID(), c.BorrowerID(), c.Status().String(), c.Reason(), c.DaysOverdue(),
		c.Outstanding(), c.AssignedTo(), notesJSON, c.CreatedAt().UTC(), c.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save collection case: %w", err)
	}
	return nil
}

// FindByAccountID returns every case for an account, newest first.
func (r *CollectionCaseRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.CollectionCase, error) {
	query := `
		SELECT id, account_id, borrower_id, status, reason, days_overdue,
		       outstanding, assigned_to, notes, created_at, updated_at
		FROM collection_cases
		WHERE account_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query collection cases: %w", err)
	}
	defer rows.Close()

	var result []model.CollectionCase
	for rows.Next() {
		c, err := scanCollectionCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCollectionCase(s scannable) (model.CollectionCase, error) {
	var (
		snap                 model.CollectionCaseSnapshot
		status               string
		outstanding          decimal.Decimal
		notesJSON            []byte
		createdAt, updatedAt time.Time
	)
	err := s.Scan(&snap.ID, &snap.AccountID, &snap.BorrowerID, &status, &snap.Reason, &snap.DaysOverdue,
		&outstanding, &snap.AssignedTo, &notesJSON, &createdAt, &updatedAt)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("scan collection case: %w", err)
	}

	snap.Status, err = valueobject.NewCollectionCaseStatus(status)
	if err != nil {
		return model.CollectionCase{}, err
	}
	if err := json.Unmarshal(notesJSON, &snap.Notes); err != nil {
		return model.CollectionCase{}, fmt.Errorf("unmarshal notes: %w", err)
	}
	if len(snap.Notes) == 0 {
		snap.Notes = nil
	}
	snap.Outstanding = outstanding
	snap.CreatedAt = createdAt.UTC()
	snap.UpdatedAt = updatedAt.UTC()
	return model.ReconstructCollectionCase(snap), nil
}
