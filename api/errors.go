package api

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/Keksclan/gradebook/service"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errInternal hides store and driver details from clients.
var errInternal = status.Error(codes.Internal, "internal error")

// ToStatus converts a service error into a gRPC status error. Errors that
// already carry a status are returned unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return status.Error(codes.InvalidArgument, describe(verrs))
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrSubjectNotAssigned):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		return status.Error(codes.NotFound, "log file not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return errInternal
	}
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Field()+": must satisfy "+fe.Tag()+"="+fe.Param())
			continue
		}
		msgs = append(msgs, fe.Field()+": must satisfy "+fe.Tag())
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
