package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCode maps an error kind to a gRPC code.
func statusCode(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrState):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrTimeWindow):
		return codes.OutOfRange
	case errors.Is(err, common.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrConflict):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a status error. Internal errors
// are not echoed to the caller.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := statusCode(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
