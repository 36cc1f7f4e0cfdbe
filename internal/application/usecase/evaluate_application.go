package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// EvaluateQuoteUseCase scores a caller-supplied profile. Nothing is stored.
type EvaluateQuoteUseCase struct {
	engine  *service.UnderwritingEngine
	metrics port.MetricsRecorder
}

// NewEvaluateQuoteUseCase wires dependencies.
func NewEvaluateQuoteUseCase(engine *service.UnderwritingEngine, metrics port.MetricsRecorder) *EvaluateQuoteUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &EvaluateQuoteUseCase{engine: engine, metrics: metrics}
}

// Execute evaluates the request. Ineligibility is a successful result.
func (uc *EvaluateQuoteUseCase) Execute(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluationResponse, error) {
	lt, err := parseLoanType(req.LoanType)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	in := model.EvaluationInput{
		Borrower: model.BorrowerProfile{
			BorrowerID:        req.BorrowerID,
			MonthlyIncome:     req.MonthlyIncome,
			CreditScore:       req.CreditScore,
			EmploymentStatus:  valueobject.NewEmploymentStatus(req.EmploymentStatus),
			ExistingLoanCount: req.ExistingLoanCount,
			TotalActiveDebt:   req.TotalActiveDebt,
		},
		Savings: model.SavingsProfile{
			Balance:             req.SavingsBalance,
			TotalInterestEarned: req.TotalInterestEarned,
			AccountAgeMonths:    req.SavingsAccountAgeMonths,
		},
		Request: model.LoanRequest{
			RequestedAmount: req.RequestedAmount,
			LoanType:        lt,
			TermMonths:      req.TermMonths,
			Currency:        cur,
		},
	}

	res, err := uc.engine.Evaluate(in)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("evaluate: %w", err)
	}
	uc.metrics.RecordEvaluation(ctx, lt, res.IsEligible, res.RiskScore)
	return toEvaluationResponse(res, cur), nil
}

// EvaluateApplicationUseCase scores a loan request against the borrower's
// stored profile.
type EvaluateApplicationUseCase struct {
	profiles port.ProfileReader
	engine   *service.UnderwritingEngine
	metrics  port.MetricsRecorder
}

// NewEvaluateApplicationUseCase wires dependencies.
func NewEvaluateApplicationUseCase(
	profiles port.ProfileReader,
	engine *service.UnderwritingEngine,
	metrics port.MetricsRecorder,
) *EvaluateApplicationUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &EvaluateApplicationUseCase{profiles: profiles, engine: engine, metrics: metrics}
}

// Execute loads the profile and evaluates the request.
func (uc *EvaluateApplicationUseCase) Execute(ctx context.Context, req dto.EvaluateBorrowerRequest) (dto.EvaluationResponse, error) {
	lt, err := parseLoanType(req.LoanType)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	cur, err := parseCurrency(req.Currency)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	res, err := uc.evaluate(ctx, req.BorrowerID, model.LoanRequest{
		RequestedAmount: req.RequestedAmount,
		LoanType:        lt,
		TermMonths:      req.TermMonths,
		Currency:        cur,
	})
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	return toEvaluationResponse(res, cur), nil
}

func (uc *EvaluateApplicationUseCase) evaluate(ctx context.Context, borrowerID string, req model.LoanRequest) (model.EvaluationResult, error) {
	if borrowerID == "" {
		return model.EvaluationResult{}, model.NewInvalidInput("borrower_id", "is required")
	}
	borrower, err := uc.profiles.BorrowerProfile(ctx, borrowerID)
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("load borrower profile: %w", err)
	}
	savings, err := uc.profiles.SavingsProfile(ctx, borrowerID)
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("load savings profile: %w", err)
	}

	res, err := uc.engine.Evaluate(model.EvaluationInput{Borrower: borrower, Savings: savings, Request: req})
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}
	uc.metrics.RecordEvaluation(ctx, req.LoanType, res.IsEligible, res.RiskScore)
	return res, nil
}
