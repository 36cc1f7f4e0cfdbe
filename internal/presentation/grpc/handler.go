package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/pkg/auth"
)

// UnderwritingHandler exposes the underwriting use cases over gRPC.
type UnderwritingHandler struct {
	UnimplementedUnderwritingServiceServer

	uc     usecase.Set
	logger *slog.Logger
}

func NewUnderwritingHandler(uc usecase.Set, logger *slog.Logger) *UnderwritingHandler {
	return &UnderwritingHandler{uc: uc, logger: logger}
}

func execute[Req, Resp any](ctx context.Context, uc usecase.UseCase[Req, Resp], req *Req) (*Resp, error) {
	if uc == nil {
		return nil, status.Error(codes.Unimplemented, "operation not configured")
	}
	resp, err := uc.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *UnderwritingHandler) Evaluate(ctx context.Context, req *dto.EvaluateRequest) (*dto.EvaluationResponse, error) {
	return execute(ctx, h.uc.EvaluateQuote, req)
}

func (h *UnderwritingHandler) EvaluateBorrower(ctx context.Context, req *dto.EvaluateBorrowerRequest) (*dto.EvaluationResponse, error) {
	return execute(ctx, h.uc.EvaluateBorrower, req)
}

func (h *UnderwritingHandler) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.LoanApplicationResponse, error) {
	req.PerformedBy = auth.ActorFromContext(ctx)
	return execute(ctx, h.uc.Submit, req)
}

func (h *UnderwritingHandler) GetApplication(ctx context.Context, req *dto.GetApplicationRequest) (*dto.LoanApplicationResponse, error) {
	return execute(ctx, h.uc.GetApplication, req)
}

func (h *UnderwritingHandler) DecideApplication(ctx context.Context, req *dto.DecideApplicationRequest) (*dto.LoanApplicationResponse, error) {
	req.PerformedBy = auth.ActorFromContext(ctx)
	return execute(ctx, h.uc.Decide, req)
}

func (h *UnderwritingHandler) DisburseLoan(ctx context.Context, req *dto.DisburseLoanRequest) (*dto.DisbursementResponse, error) {
	req.PerformedBy = auth.ActorFromContext(ctx)
	return execute(ctx, h.uc.Disburse, req)
}

func (h *UnderwritingHandler) MakePayment(ctx context.Context, req *dto.MakePaymentRequest) (*dto.PaymentResponse, error) {
	req.PerformedBy = auth.ActorFromContext(ctx)
	return execute(ctx, h.uc.MakePayment, req)
}

func (h *UnderwritingHandler) GetLoan(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanAccountResponse, error) {
	return execute(ctx, h.uc.GetLoan, req)
}

func (h *UnderwritingHandler) SweepOverdue(ctx context.Context, req *dto.SweepOverdueRequest) (*dto.SweepOverdueResponse, error) {
	req.PerformedBy = auth.ActorFromContext(ctx)
	resp, err := execute(ctx, h.uc.SweepOverdue, req)
	if err == nil {
		h.logger.InfoContext(ctx, "overdue sweep requested", "defaulted", len(resp.Defaulted), "actor", req.PerformedBy)
	}
	return resp, err
}
