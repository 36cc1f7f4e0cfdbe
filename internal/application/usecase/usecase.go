package usecase

import (
	"context"

	"github.com/bibbank/underwriting/internal/application/dto"
)

// UseCase is the shape shared by every application operation.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// Set groups the operations exposed by the transports.
type Set struct {
	EvaluateQuote    UseCase[dto.EvaluateRequest, dto.EvaluationResponse]
	EvaluateBorrower UseCase[dto.EvaluateBorrowerRequest, dto.EvaluationResponse]
	Submit           UseCase[dto.SubmitApplicationRequest, dto.LoanApplicationResponse]
	Decide           UseCase[dto.DecideApplicationRequest, dto.LoanApplicationResponse]
	GetApplication   UseCase[dto.GetApplicationRequest, dto.LoanApplicationResponse]
	Disburse         UseCase[dto.DisburseLoanRequest, dto.DisbursementResponse]
	MakePayment      UseCase[dto.MakePaymentRequest, dto.PaymentResponse]
	GetLoan          UseCase[dto.GetLoanRequest, dto.LoanAccountResponse]
	SweepOverdue     UseCase[dto.SweepOverdueRequest, dto.SweepOverdueResponse]
}

// Func adapts a plain function to UseCase.
type Func[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f Func[Req, Resp]) Execute(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}
