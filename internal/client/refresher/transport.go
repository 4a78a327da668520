package refresher

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/netx"
)

var errBodyNotReplayable = errors.New("request body cannot be replayed")

// Transport is an http.RoundTripper that sends every request through a
// Coordinator built with the default classifier. A 401 triggers one
// renewal and one replay; the body is replayed through Request.GetBody.
type Transport struct {
	Base        http.RoundTripper
	Coordinator *Coordinator
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp    *http.Response
		attempt int
	)

	err := t.Coordinator.Do(req.Context(), func(ctx context.Context, accessToken string) error {
		r, err := prepare(ctx, req, accessToken, attempt)
		attempt++
		if err != nil {
			return err
		}

		if resp != nil {
			drainAndClose(resp)
			resp = nil
		}

		resp, err = t.base().RoundTrip(r)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthenticatedResponse
		}
		return nil
	})

	if err != nil && !errors.Is(err, ErrUnauthenticatedResponse) {
		if resp != nil {
			drainAndClose(resp)
		}
		return nil, err
	}
	return resp, nil
}

// prepare clones req for one attempt, rewinding the body on a replay and
// replacing the Authorization header.
func prepare(ctx context.Context, req *http.Request, accessToken string, attempt int) (*http.Request, error) {
	r := req.Clone(ctx)

	if attempt > 0 && req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, errBodyNotReplayable
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}

	r.Header.Del(common.AuthorizationHeaderName)
	if accessToken != "" {
		r.Header.Set(common.AuthorizationHeaderName, netx.BearerHeader(accessToken))
	}
	return r, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
