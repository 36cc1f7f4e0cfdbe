package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// MakePaymentUseCase applies a repayment to an active loan account.
type MakePaymentUseCase struct {
	acctRepo port.LoanAccountRepository
	emitter  *Emitter
}

// NewMakePaymentUseCase wires dependencies.
func NewMakePaymentUseCase(acctRepo port.LoanAccountRepository, emitter *Emitter) *MakePaymentUseCase {
	return &MakePaymentUseCase{acctRepo: acctRepo, emitter: emitter}
}

// Execute processes a payment against a loan account.
func (uc *MakePaymentUseCase) Execute(
	ctx context.Context,
	req dto.MakePaymentRequest,
) (dto.PaymentResponse, error) {
	now := uc.emitter.now()

	if strings.TrimSpace(req.Reference) == "" {
		return dto.PaymentResponse{}, model.NewInvalidInput("reference", "is required")
	}

	// 1. Retrieve the account.
	acct, err := uc.acctRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find account: %w", err)
	}
	before := accountValues(acct)

	// 2. Apply payment.
	paid, err := acct.ApplyPayment(req.Reference, req.Amount, now)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}

	// 3. Persist updated account.
	if err := uc.acctRepo.Save(ctx, paid); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save account: %w", err)
	}

	// 4. Side effects.
	uc.emitter.publish(ctx, paid.DomainEvents())
	uc.emitter.record(ctx, port.AuditRecord{
		Action:      "account.payment_applied",
		EntityType:  entityAccount,
		EntityID:    paid.ID(),
		OldValues:   before,
		NewValues:   accountValues(paid),
		PerformedBy: req.PerformedBy,
		OccurredAt:  now,
	})
	if !paid.State().Equal(acct.State()) {
		uc.emitter.metrics.RecordTransition(ctx, entityAccount, paid.State())
	}

	return dto.PaymentResponse{
		AccountID:         paid.ID(),
		Reference:         req.Reference,
		AmountPaid:        req.Amount,
		RunningBalance:    paid.RunningBalance(),
		OutstandingAmount: paid.OutstandingAmount(),
		NextPaymentDate:   optionalTime(paid.NextPaymentDate()),
		State:             paid.State().String(),
	}, nil
}
