package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
)

// paymentActor is recorded as the performer of consumed payments.
const paymentActor = "payments-consumer"

// PaymentReceived is published by the payments service when a repayment
// for a loan account settles.
type PaymentReceived struct {
	AccountID string          `json:"account_id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentApplier is satisfied by usecase.MakePaymentUseCase.
type PaymentApplier interface {
	Execute(ctx context.Context, req dto.MakePaymentRequest) (dto.PaymentResponse, error)
}

// NewPaymentHandler returns a consumer handler that applies settled
// payments to loan accounts. Messages that can never succeed are logged and
// acknowledged; any other failure is returned so the consumer retries the
// same message before reading further.
func NewPaymentHandler(payments PaymentApplier, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		var p PaymentReceived
		if err := json.Unmarshal(msg.Value, &p); err != nil {
			logger.WarnContext(ctx, "dropping malformed payment message",
				"key", string(msg.Key),
				"error", err,
			)
			return nil
		}

		res, err := payments.Execute(ctx, dto.MakePaymentRequest{
			AccountID:   p.AccountID,
			Reference:   p.Reference,
			Amount:      p.Amount,
			PerformedBy: paymentActor,
		})
		if err != nil {
			if permanent(err) {
				logger.WarnContext(ctx, "payment rejected",
					"account_id", p.AccountID,
					"reference", p.Reference,
					"amount", p.Amount.String(),
					"error", err,
				)
				return nil
			}
			return err
		}

		logger.InfoContext(ctx, "payment applied",
			"account_id", res.AccountID,
			"reference", res.Reference,
			"running_balance", res.RunningBalance.String(),
			"state", res.State,
		)
		return nil
	}
}

func permanent(err error) bool {
	for _, target := range []error{
		model.ErrInvalidInput,
		model.ErrNotFound,
		model.ErrLoanNotActive,
		model.ErrPaymentExceedsBalance,
		valueobject.ErrInvalidStatusTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
