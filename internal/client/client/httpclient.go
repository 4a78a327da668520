package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/refresher"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// HTTPClient talks to the JSON gateway. Protected routes go through a
// refresher.Transport; login, renew and logout use the plain client.
type HTTPClient struct {
	baseURL string
	plain   *http.Client
	authed  *http.Client
	tokens  *refresher.Coordinator
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient targets baseURL. A nil base uses http.DefaultTransport.
func NewHTTPClient(baseURL string, o Options, base http.RoundTripper) *HTTPClient {
	if base == nil {
		base = http.DefaultTransport
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		plain:   &http.Client{Transport: base},
		logger:  o.logger(),
	}
	c.tokens = refresher.New(refresher.Config{
		Store:   o.Store,
		Renew:   c.renew,
		Timeout: o.RenewTimeout,
		Logger:  o.Logger,
	})
	c.authed = &http.Client{Transport: &refresher.Transport{Base: base, Coordinator: c.tokens}}
	return c
}

// do sends in as JSON (nil means no body) and decodes a 200 reply into out.
func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, refresher.ErrSessionExpired) {
			return sessionExpired(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e api.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return mapHTTPStatus(resp.StatusCode, e.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) renew(ctx context.Context, renewalToken string) (string, error) {
	var resp api.RenewResponse
	if err := c.do(ctx, c.plain, http.MethodPost, "/api/auth/renew", api.RenewRequest{RenewalToken: renewalToken}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Login(ctx context.Context, identity, secret string) (*models.Profile, error) {
	var resp api.LoginResponse
	if err := c.do(ctx, c.plain, http.MethodPost, "/api/auth/login", api.LoginRequest{Identity: identity, Secret: secret}, &resp); err != nil {
		return nil, err
	}

	if err := c.tokens.SetCredentials(ctx, resp.AccessToken, resp.RenewalToken); err != nil {
		return nil, err
	}
	return fromAPIProfile(resp.Profile), nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.Profile, error) {
	var resp api.Profile
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	return fromAPIProfile(&resp), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	renewal, err := c.tokens.RenewalToken(ctx)
	if err == nil && renewal != "" {
		if lerr := c.do(ctx, c.plain, http.MethodPost, "/api/auth/logout", api.LogoutRequest{RenewalToken: renewal}, nil); lerr != nil {
			c.logger.Warn(ctx, "server logout failed, signing out locally", "error", lerr)
		}
	}
	return c.tokens.Clear(ctx)
}

func (c *HTTPClient) HasSession(ctx context.Context) (bool, error) {
	return c.tokens.HasSession(ctx)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := c.do(ctx, c.plain, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.plain.CloseIdleConnections()
	return nil
}
