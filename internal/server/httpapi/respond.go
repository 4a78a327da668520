package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, err error) {
	code, msg := statusFor(err)
	respondWithJSON(w, code, api.ErrorResponse{Error: msg})
}

// statusFor maps service sentinels onto HTTP codes. Unknown errors become
// 500 without leaking their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, common.ErrUnauthorized.Error()
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, common.ErrUnauthenticated.Error()
	case errors.Is(err, common.ErrMissingCredentials):
		return http.StatusUnauthorized, common.ErrMissingCredentials.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, common.ErrForbidden.Error()
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.ErrNotFound.Error()
	case errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest, common.ErrInvalidArgument.Error()
	default:
		return http.StatusInternalServerError, common.ErrInternal.Error()
	}
}
