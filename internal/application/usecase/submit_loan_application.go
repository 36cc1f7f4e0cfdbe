package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// SubmitLoanApplicationUseCase creates an application, submits it, places it
// under review and attaches an evaluation for the underwriter.
type SubmitLoanApplicationUseCase struct {
	appRepo   port.LoanApplicationRepository
	evaluator *EvaluateApplicationUseCase
	emitter   *Emitter
}

// NewSubmitLoanApplicationUseCase wires dependencies.
func NewSubmitLoanApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	evaluator *EvaluateApplicationUseCase,
	emitter *Emitter,
) *SubmitLoanApplicationUseCase {
	return &SubmitLoanApplicationUseCase{
		appRepo:   appRepo,
		evaluator: evaluator,
		emitter:   emitter,
	}
}

// Execute runs DRAFT -> SUBMITTED -> UNDER_REVIEW and persists the result.
func (uc *SubmitLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	now := uc.emitter.now()

	lt, err := parseLoanType(req.LoanType)
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	// 1. Create the draft.
	app, err := model.NewLoanApplication(req.BorrowerID, lt, req.RequestedAmount, cur, req.TermMonths, req.Purpose, now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("create application: %w", err)
	}

	// 2. Submit and move into review.
	app, err = app.Submit(now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("submit application: %w", err)
	}
	app, err = app.StartReview(now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("start review: %w", err)
	}

	// 3. Evaluate against the stored profile.
	res, err := uc.evaluator.evaluate(ctx, app.BorrowerID(), model.LoanRequest{
		RequestedAmount: app.RequestedAmount(),
		LoanType:        app.LoanType(),
		TermMonths:      app.TermMonths(),
		Currency:        app.Currency(),
	})
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	app, err = app.AttachAssessment(res, now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("attach assessment: %w", err)
	}

	// 4. Persist.
	if err := uc.appRepo.Save(ctx, app); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}

	// 5. Side effects.
	uc.emitter.publish(ctx, app.DomainEvents())
	uc.emitter.record(ctx, port.AuditRecord{
		Action:      "application.submitted",
		EntityType:  entityApplication,
		EntityID:    app.ID(),
		NewValues:   applicationValues(app),
		PerformedBy: req.PerformedBy,
		OccurredAt:  now,
	})
	uc.emitter.metrics.RecordTransition(ctx, entityApplication, app.State())

	return toApplicationResponse(app.ClearEvents()), nil
}
