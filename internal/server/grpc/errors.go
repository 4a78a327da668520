package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service sentinels onto gRPC status codes. Anything
// unrecognised becomes Internal without leaking its text.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrUnauthorized.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, common.ErrForbidden.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, common.ErrNotFound.Error())
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, common.ErrInvalidArgument.Error())
	default:
		return status.Error(codes.Internal, common.ErrInternal.Error())
	}
}
