// Package netx holds helpers for the Authorization value shared by the
// gRPC metadata and the HTTP header.
package netx

import (
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// BearerHeader formats token as an Authorization value.
func BearerHeader(token string) string {
	return common.BearerScheme + " " + token
}

// BearerToken extracts the token from an Authorization value. The scheme
// is matched case-insensitively; anything else yields ok == false.
func BearerToken(value string) (token string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(rest)
	return token, token != ""
}
