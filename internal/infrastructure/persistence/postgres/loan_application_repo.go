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
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

const applicationColumns = `
	id, borrower_id, loan_type, requested_amount, currency,
	term_months, purpose, state, assessment,
	approved_amount, approved_rate, approved_payment,
	decision_reason, decided_by, account_id,
	version, created_at, updated_at`

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewLoanApplicationRepo creates a new repository backed by PostgreSQL.
func NewLoanApplicationRepo(pool *pgxpool.Pool) *LoanApplicationRepo {
	return &LoanApplicationRepo{pool: pool}
}

// Save persists a loan application (upsert by ID with optimistic locking).
func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	return saveApplication(ctx, r.pool, app)
}

// FindByID retrieves a single loan application.
func (r *LoanApplicationRepo) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return model.LoanApplication{}, notFound(err, "loan application", id)
	}
	return app, nil
}

// FindByBorrowerID retrieves all applications of a borrower, newest first.
func (r *LoanApplicationRepo) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE borrower_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("query loan applications: %w", err)
	}
	defer rows.Close()

	var result []model.LoanApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func saveApplication(ctx context.Context, q pgutil.Querier, app model.LoanApplication) error {
	s := app.Snapshot()
	assessment, err := encodeAssessment(s.Assessment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO loan_applications (` + applicationColumns + `
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			state            = EXCLUDED.state,
			assessment       = EXCLUDED.assessment,
			approved_amount  = EXCLUDED.approved_amount,
			approved_rate    = EXCLUDED.approved_rate,
			approved_payment = EXCLUDED.approved_payment,
			decision_reason  = EXCLUDED.decision_reason,
			decided_by       = EXCLUDED.decided_by,
			account_id       = EXCLUDED.account_id,
			version          = loan_applications.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE loan_applications.version = $16
	`
	tag, err := q.Exec(ctx, query,
		s.ID, s.BorrowerID, s.LoanType.String(), s.RequestedAmount, s.Currency.Code(),
		s.TermMonths, s.Purpose, s.State.String(), assessment,
		s.ApprovedAmount, s.ApprovedRate, s.ApprovedPayment,
		s.DecisionReason, s.DecidedBy, s.AccountID,
		s.Version, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save loan application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan application %s: %w", s.ID, model.ErrConcurrentModification)
	}
	return nil
}

// assessmentDoc is the JSONB shape of model.Assessment.
type assessmentDoc struct {
	IsEligible              bool            `json:"is_eligible"`
	RiskScore               int             `json:"risk_score"`
	RecommendedAmount       decimal.Decimal `json:"recommended_amount"`
	RecommendedInterestRate decimal.Decimal `json:"recommended_interest_rate"`
	EvaluatedAt             time.Time       `json:"evaluated_at"`
}

func encodeAssessment(a *model.Assessment) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(assessmentDoc{
		IsEligible:              a.IsEligible,
		RiskScore:               int(a.RiskScore),
		RecommendedAmount:       a.RecommendedAmount,
		RecommendedInterestRate: a.RecommendedInterestRate,
		EvaluatedAt:             a.EvaluatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}
	return b, nil
}

func decodeAssessment(raw []byte) (*model.Assessment, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc assessmentDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return &model.Assessment{
		IsEligible:              doc.IsEligible,
		RiskScore:               valueobject.RiskScore(doc.RiskScore),
		RecommendedAmount:       doc.RecommendedAmount,
		RecommendedInterestRate: doc.RecommendedInterestRate,
		EvaluatedAt:             doc.EvaluatedAt,
	}, nil
}

func scanApplication(s scannable) (model.LoanApplication, error) {
	var (
		snap                      model.LoanApplicationSnapshot
		loanType, currency, state string
		assessment                []byte
		createdAt, updatedAt      time.Time
	)
	err := s.Scan(
		&snap.ID, &snap.BorrowerID, &loanType, &snap.RequestedAmount, &currency,
		&snap.TermMonths, &snap.Purpose, &state, &assessment,
		&snap.ApprovedAmount, &snap.ApprovedRate, &snap.ApprovedPayment,
		&snap.DecisionReason, &snap.DecidedBy, &snap.AccountID,
		&snap.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("scan loan application: %w", err)
	}

	if snap.LoanType, err = valueobject.ParseLoanType(loanType); err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse loan type: %w", err)
	}
	if snap.Currency, err = parseCurrency(currency); err != nil {
		return model.LoanApplication{}, err
	}
	if snap.State, err = valueobject.NewLifecycleState(state); err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse state: %w", err)
	}
	if snap.Assessment, err = decodeAssessment(assessment); err != nil {
		return model.LoanApplication{}, err
	}
	snap.CreatedAt = createdAt.UTC()
	snap.UpdatedAt = updatedAt.UTC()

	return model.ReconstructLoanApplication(snap), nil
}
