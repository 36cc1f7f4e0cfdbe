package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

var errorCodes = []struct {
	target error
	code   codes.Code
}{
	{model.ErrInvalidInput, codes.InvalidArgument},
	{model.ErrApprovalCeilingExceeded, codes.InvalidArgument},
	{model.ErrAmountExceedsApproved, codes.InvalidArgument},
	{model.ErrPaymentExceedsBalance, codes.InvalidArgument},
	{model.ErrNotFound, codes.NotFound},
	{model.ErrAlreadyDisbursed, codes.AlreadyExists},
	{model.ErrIncompleteApplication, codes.FailedPrecondition},
	{model.ErrNotApproved, codes.FailedPrecondition},
	{model.ErrLoanNotActive, codes.FailedPrecondition},
	{valueobject.ErrInvalidStatusTransition, codes.FailedPrecondition},
	{model.ErrConcurrentModification, codes.Aborted},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
	{context.Canceled, codes.Canceled},
}

// toStatus maps domain errors onto gRPC status codes. Unknown errors become
// Internal without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return status.Error(ec.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
