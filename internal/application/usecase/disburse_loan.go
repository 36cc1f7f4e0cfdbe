package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// DisburseLoanUseCase opens a loan account for an approved application,
// activates it and marks the application disbursed in one atomic write.
type DisburseLoanUseCase struct {
	appRepo  port.LoanApplicationRepository
	acctRepo port.LoanAccountRepository
	store    port.DisbursementStore
	emitter  *Emitter
}

// NewDisburseLoanUseCase wires dependencies.
func NewDisburseLoanUseCase(
	appRepo port.LoanApplicationRepository,
	acctRepo port.LoanAccountRepository,
	store port.DisbursementStore,
	emitter *Emitter,
) *DisburseLoanUseCase {
	return &DisburseLoanUseCase{
		appRepo:  appRepo,
		acctRepo: acctRepo,
		store:    store,
		emitter:  emitter,
	}
}

// Execute disburses an approved application. A second disbursement of the
// same application fails with model.ErrAlreadyDisbursed.
func (uc *DisburseLoanUseCase) Execute(
	ctx context.Context,
	req dto.DisburseLoanRequest,
) (dto.DisbursementResponse, error) {
	now := uc.emitter.now()

	// 1. Retrieve the approved application.
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("find application: %w", err)
	}

	// 2. Refuse if an account already exists.
	_, err = uc.acctRepo.FindByApplicationID(ctx, app.ID())
	switch {
	case err == nil:
		return dto.DisbursementResponse{}, fmt.Errorf("disburse application %s: %w", app.ID(), model.ErrAlreadyDisbursed)
	case !errors.Is(err, model.ErrNotFound):
		return dto.DisbursementResponse{}, fmt.Errorf("find account: %w", err)
	}

	// 3. Open and activate the account.
	acct, err := model.NewLoanAccount(app, model.DisbursementRequest{
		Amount:           req.Amount,
		DisbursementDate: req.DisbursementDate,
	}, now)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("open account: %w", err)
	}
	acct, err = acct.Activate(now)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("activate account: %w", err)
	}

	// 4. Link the application.
	disbursed, err := app.MarkDisbursed(acct.ID(), now)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("mark disbursed: %w", err)
	}

	// 5. Persist both atomically.
	if err := uc.store.CommitDisbursement(ctx, disbursed, acct); err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("commit disbursement: %w", err)
	}

	// 6. Side effects.
	events := make([]event.DomainEvent, 0, len(disbursed.DomainEvents())+len(acct.DomainEvents()))
	events = append(events, disbursed.DomainEvents()...)
	events = append(events, acct.DomainEvents()...)
	uc.emitter.publish(ctx, events)
	uc.emitter.record(ctx,
		port.AuditRecord{
			Action:      "application.disbursed",
			EntityType:  entityApplication,
			EntityID:    disbursed.ID(),
			OldValues:   applicationValues(app),
			NewValues:   applicationValues(disbursed),
			PerformedBy: req.PerformedBy,
			OccurredAt:  now,
		},
		port.AuditRecord{
			Action:      "account.opened",
			EntityType:  entityAccount,
			EntityID:    acct.ID(),
			NewValues:   openedAccountValues(app, acct),
			PerformedBy: req.PerformedBy,
			OccurredAt:  now,
		},
	)
	uc.emitter.metrics.RecordTransition(ctx, entityApplication, disbursed.State())
	uc.emitter.metrics.RecordTransition(ctx, entityAccount, acct.State())
	uc.emitter.metrics.RecordDisbursement(ctx, acct)

	return toDisbursementResponse(acct), nil
}
