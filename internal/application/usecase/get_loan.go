package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// GetLoanUseCase retrieves a loan account by ID.
type GetLoanUseCase struct {
	acctRepo port.LoanAccountRepository
	cases    port.CollectionCaseRepository
}

// NewGetLoanUseCase wires dependencies. cases may be nil.
func NewGetLoanUseCase(acctRepo port.LoanAccountRepository, cases port.CollectionCaseRepository) *GetLoanUseCase {
	return &GetLoanUseCase{acctRepo: acctRepo, cases: cases}
}

// Execute returns the account with its schedule, current days overdue and,
// once defaulted, its collection cases.
func (uc *GetLoanUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanRequest,
) (dto.LoanAccountResponse, error) {
	acct, err := uc.acctRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		return dto.LoanAccountResponse{}, fmt.Errorf("find account: %w", err)
	}
	resp := toAccountResponse(acct, time.Now().UTC())
	if uc.cases != nil && acct.State().Equal(valueobject.StateDefaulted) {
		cases, err := uc.cases.FindByAccountID(ctx, acct.ID())
		if err != nil {
			return dto.LoanAccountResponse{}, fmt.Errorf("find collection cases: %w", err)
		}
		resp.CollectionCases = toCollectionCaseResponses(cases)
	}
	return resp, nil
}

// GetApplicationUseCase retrieves a loan application by ID.
type GetApplicationUseCase struct {
	appRepo port.LoanApplicationRepository
}

// NewGetApplicationUseCase wires dependencies.
func NewGetApplicationUseCase(appRepo port.LoanApplicationRepository) *GetApplicationUseCase {
	return &GetApplicationUseCase{appRepo: appRepo}
}

// Execute returns a loan application response for the given ID.
func (uc *GetApplicationUseCase) Execute(
	ctx context.Context,
	req dto.GetApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}
	return toApplicationResponse(app), nil
}
