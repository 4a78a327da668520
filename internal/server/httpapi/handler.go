// Package httpapi exposes SessionService as a JSON HTTP API routed with
// gorilla/mux. It shares its message types with the gRPC transport.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gorilla/mux"
)

// Sessions is the part of services.SessionService the handlers need.
type Sessions interface {
	Login(ctx context.Context, identity, secret string) (*services.LoginResult, error)
	Renew(ctx context.Context, renewalToken string) (auth.Credential, error)
	Profile(ctx context.Context, accessToken string) (*models.Profile, error)
	Logout(ctx context.Context, renewalToken string) error
}

const maxBodyBytes = 1 << 16

type Handler struct {
	sessions Sessions
	logger   logging.Logger
}

func NewHandler(sessions Sessions, l logging.Logger) *Handler {
	return &Handler{sessions: sessions, logger: l.With("module", "http_api")}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.logRequests)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	authRoutes := router.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/renew", h.Renew).Methods(http.MethodPost)
	authRoutes.HandleFunc("/refresh", h.Renew).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	protected := router.PathPrefix("/api/user").Subrouter()
	protected.Use(bearerAuth)
	protected.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)

	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, api.PingResponse{Status: "OK"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(w, r, &req); err != nil {
		respondWithError(w, common.ErrInvalidArgument)
		return
	}

	res, err := h.sessions.Login(r.Context(), req.Identity, req.Secret)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, api.LoginResponse{
		AccessToken:  res.AccessToken,
		RenewalToken: res.RenewalToken,
		Profile:      toProfile(res.Profile),
	})
}

// Renew answers 403 for a malformed body too: the caller could not have
// held a usable renewal credential.
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	var req api.RenewRequest
	if err := decode(w, r, &req); err != nil {
		respondWithError(w, common.ErrForbidden)
		return
	}

	cred, err := h.sessions.Renew(r.Context(), req.RenewalToken)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, api.RenewResponse{AccessToken: cred.Token})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Profile(r.Context(), accessTokenFromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toProfile(p))
}

// Logout always succeeds. An absent or unreadable body is a logout without
// a renewal token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req api.LogoutRequest
	_ = decode(w, r, &req)

	_ = h.sessions.Logout(r.Context(), req.RenewalToken)
	respondWithJSON(w, http.StatusOK, api.LogoutResponse{Message: "logged out"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func toProfile(p *models.Profile) *api.Profile {
	if p == nil {
		return nil
	}
	return &api.Profile{ID: p.ID, Identity: p.Identity, Name: p.Name}
}
