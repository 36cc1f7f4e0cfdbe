package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// SweepOverdueLoansUseCase is the collection policy that decides defaults:
// any active account more than GraceDays past its next payment date is
// marked DEFAULTED and a collection case is opened for it.
type SweepOverdueLoansUseCase struct {
	acctRepo port.LoanAccountRepository
	cases    port.CollectionCaseRepository
	emitter  *Emitter
}

// NewSweepOverdueLoansUseCase wires dependencies.
func NewSweepOverdueLoansUseCase(
	acctRepo port.LoanAccountRepository,
	cases port.CollectionCaseRepository,
	emitter *Emitter,
) *SweepOverdueLoansUseCase {
	return &SweepOverdueLoansUseCase{acctRepo: acctRepo, cases: cases, emitter: emitter}
}

// Execute defaults every qualifying account. One account failing does not
// stop the sweep; its ID is reported in Failed.
func (uc *SweepOverdueLoansUseCase) Execute(
	ctx context.Context,
	req dto.SweepOverdueRequest,
) (dto.SweepOverdueResponse, error) {
	if req.GraceDays < 0 {
		return dto.SweepOverdueResponse{}, model.NewInvalidInput("grace_days", "must not be negative")
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = uc.emitter.now()
	}

	accounts, err := uc.acctRepo.FindOverdue(ctx, asOf, req.GraceDays)
	if err != nil {
		return dto.SweepOverdueResponse{}, fmt.Errorf("find overdue accounts: %w", err)
	}

	resp := dto.SweepOverdueResponse{Scanned: len(accounts), Defaulted: []string{}}
	for _, acct := range accounts {
		if !model.IsPastGrace(acct.NextPaymentDate(), asOf, req.GraceDays) {
			continue
		}
		defaulted, err := uc.defaultAccount(ctx, acct, asOf, req.PerformedBy)
		if err != nil {
			uc.emitter.logger.ErrorContext(ctx, "failed to default overdue account",
				slog.String("account_id", acct.ID()),
				slog.String("error", err.Error()),
			)
			resp.Failed = append(resp.Failed, acct.ID())
			continue
		}
		resp.Defaulted = append(resp.Defaulted, acct.ID())

		if c, ok := uc.openCollectionCase(ctx, defaulted, asOf, req.PerformedBy); ok {
			resp.CollectionCases = append(resp.CollectionCases, c.ID())
		}
	}
	return resp, nil
}

func (uc *SweepOverdueLoansUseCase) defaultAccount(
	ctx context.Context,
	acct model.LoanAccount,
	asOf time.Time,
	actor string,
) (model.LoanAccount, error) {
	days := acct.DaysOverdue(asOf)
	defaulted, err := acct.MarkDefaulted(fmt.Sprintf("payment overdue by %d days", days), asOf)
	if err != nil {
		return model.LoanAccount{}, fmt.Errorf("mark defaulted: %w", err)
	}
	if err := uc.acctRepo.Save(ctx, defaulted); err != nil {
		return model.LoanAccount{}, fmt.Errorf("save account: %w", err)
	}

	uc.emitter.publish(ctx, defaulted.DomainEvents())
	uc.emitter.record(ctx, port.AuditRecord{
		Action:      "account.defaulted",
		EntityType:  entityAccount,
		EntityID:    defaulted.ID(),
		OldValues:   accountValues(acct),
		NewValues:   accountValues(defaulted),
		PerformedBy: actor,
		OccurredAt:  asOf,
	})
	uc.emitter.metrics.RecordTransition(ctx, entityAccount, defaulted.State())
	return defaulted, nil
}

// openCollectionCase runs after the default is committed. A failure here is
// logged and leaves the default in place.
func (uc *SweepOverdueLoansUseCase) openCollectionCase(
	ctx context.Context,
	defaulted model.LoanAccount,
	asOf time.Time,
	actor string,
) (model.CollectionCase, bool) {
	if uc.cases == nil {
		return model.CollectionCase{}, false
	}
	c, err := model.OpenCollectionCase(defaulted, asOf)
	if err == nil {
		err = uc.cases.Save(ctx, c)
	}
	if err != nil {
		uc.emitter.logger.ErrorContext(ctx, "failed to open collection case",
			slog.String("account_id", defaulted.ID()),
			slog.String("error", err.Error()),
		)
		return model.CollectionCase{}, false
	}

	uc.emitter.record(ctx, port.AuditRecord{
		Action:      "collection_case.opened",
		EntityType:  entityCollection,
		EntityID:    c.ID(),
		NewValues:   collectionValues(c),
		PerformedBy: actor,
		OccurredAt:  asOf,
	})
	return c, true
}
