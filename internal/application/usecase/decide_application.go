package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// DecideApplicationUseCase records an underwriter's approval or rejection.
type DecideApplicationUseCase struct {
	appRepo         port.LoanApplicationRepository
	emitter         *Emitter
	approvalCeiling decimal.Decimal
}

// NewDecideApplicationUseCase wires dependencies. approvalCeiling bounds an
// approval at requested amount x ceiling; a non-positive value means 1.
func NewDecideApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	emitter *Emitter,
	approvalCeiling decimal.Decimal,
) *DecideApplicationUseCase {
	if !approvalCeiling.IsPositive() {
		approvalCeiling = model.DefaultApprovalCeiling
	}
	return &DecideApplicationUseCase{
		appRepo:         appRepo,
		emitter:         emitter,
		approvalCeiling: approvalCeiling,
	}
}

// Execute applies the decision to an application under review.
func (uc *DecideApplicationUseCase) Execute(
	ctx context.Context,
	req dto.DecideApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	now := uc.emitter.now()

	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}
	before := applicationValues(app)

	var decided model.LoanApplication
	action := "application.rejected"
	if req.Approve {
		action = "application.approved"
		decided, err = app.Approve(model.ApprovalTerms{
			ApprovedAmount: req.ApprovedAmount,
			InterestRate:   req.InterestRate,
			MonthlyPayment: req.MonthlyPayment,
			ApprovedBy:     req.PerformedBy,
			Notes:          req.Reason,
		}, uc.approvalCeiling, now)
	} else {
		decided, err = app.Reject(req.Reason, req.PerformedBy, now)
	}
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("decide application: %w", err)
	}

	if err := uc.appRepo.Save(ctx, decided); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}

	uc.emitter.publish(ctx, decided.DomainEvents())
	uc.emitter.record(ctx, port.AuditRecord{
		Action:      action,
		EntityType:  entityApplication,
		EntityID:    decided.ID(),
		OldValues:   before,
		NewValues:   applicationValues(decided),
		PerformedBy: req.PerformedBy,
		OccurredAt:  now,
	})
	uc.emitter.metrics.RecordTransition(ctx, entityApplication, decided.State())

	return toApplicationResponse(decided.ClearEvents()), nil
}
