// Package cryptox wraps the password hashing used by the identity stores.
package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the identity is unknown so a failed
// lookup costs about as much as a wrong secret.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gophauth-dummy-secret"), bcrypt.DefaultCost)

// HashSecret returns the bcrypt hash of secret at the given cost.
// A cost of 0 selects bcrypt.DefaultCost.
func HashSecret(secret string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return h, nil
}

// CompareSecret reports whether secret matches hash. A nil hash still runs
// a full comparison against dummyHash and reports false.
func CompareSecret(hash []byte, secret string) bool {
	if hash == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}
