package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/client/refresher"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrUnavailable = errors.New("server unavailable")

func sessionExpired(err error) error {
	return fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
}

// unauthenticatedFor tells a rejected login from a rejected credential by
// the server's message.
func unauthenticatedFor(msg string) error {
	if msg == common.ErrUnauthorized.Error() {
		return common.ErrUnauthorized
	}
	return common.ErrUnauthenticated
}

func mapGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, refresher.ErrSessionExpired) {
		return sessionExpired(err)
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return unauthenticatedFor(st.Message())
	case codes.PermissionDenied:
		return common.ErrForbidden
	case codes.NotFound:
		return common.ErrNotFound
	case codes.InvalidArgument:
		return common.ErrInvalidArgument
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func mapHTTPStatus(code int, msg string) error {
	switch code {
	case http.StatusUnauthorized:
		return unauthenticatedFor(msg)
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusBadRequest:
		return common.ErrInvalidArgument
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("http %d: %s", code, msg)
	}
}
