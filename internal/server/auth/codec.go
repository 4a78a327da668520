// Package auth mints and verifies the signed credentials handed to clients.
// Access and renewal credentials are both HS256 JWTs; they are told apart by
// their signing key and by the audience claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AudienceAccess  = "access"
	AudienceRenewal = "renewal"

	maxLeeway = 2 * time.Minute
)

// Claims carried by every credential. Subject is the user id and ID the
// credential id (jti).
type Claims struct {
	jwt.RegisteredClaims
}

// Credential is a freshly minted token together with the claims it encodes.
type Credential struct {
	Token     string
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CodecConfig configures a Codec.
//
// Leeway is the clock skew tolerated when checking exp and iat, at most
// two minutes. Now defaults to time.Now.
type CodecConfig struct {
	Key      []byte
	Lifetime time.Duration
	Audience string
	Leeway   time.Duration
	Now      func() time.Time
}

// Codec issues and verifies credentials of one kind.
type Codec struct {
	key      []byte
	lifetime time.Duration
	audience string
	leeway   time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("codec: empty signing key")
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New("codec: lifetime must be positive")
	}
	if cfg.Audience == "" {
		return nil, errors.New("codec: audience is required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, fmt.Errorf("codec: leeway must be within [0, %s]", maxLeeway)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Codec{
		key:      cfg.Key,
		lifetime: cfg.Lifetime,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(now),
	)
	return c, nil
}

// Lifetime reports how long issued credentials stay valid.
func (c *Codec) Lifetime() time.Duration { return c.lifetime }

// Issue signs a credential for subjectID with the given credential id.
func (c *Codec) Issue(subjectID, id string) (Credential, error) {
	issuedAt := jwt.NewNumericDate(c.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(c.lifetime))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        id,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return Credential{}, fmt.Errorf("sign credential: %w", err)
	}

	return Credential{
		Token:     signed,
		ID:        id,
		Subject:   subjectID,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Verify checks the signature, algorithm, audience and lifetime of token.
//
// Errors are common.ErrInvalidToken, common.ErrSignatureMismatch and
// common.ErrTokenExpired. Claims are returned on success and, together
// with ErrTokenExpired, for a credential whose signature checked out but
// whose lifetime is over. Every other failure returns nil claims.
func (c *Codec) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := c.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})

	switch {
	case err == nil && parsed.Valid:
		if claims.Subject == "" || claims.ID == "" {
			return nil, common.ErrInvalidToken
		}
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, common.ErrInvalidToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, common.ErrSignatureMismatch
	case errors.Is(err, jwt.ErrTokenExpired) && onlyExpired(err):
		if claims.Subject == "" || claims.ID == "" {
			return nil, common.ErrInvalidToken
		}
		return claims, common.ErrTokenExpired
	default:
		return nil, common.ErrInvalidToken
	}
}

// onlyExpired reports whether expiry is the sole claim violation.
func onlyExpired(err error) bool {
	for _, other := range []error{jwt.ErrTokenInvalidAudience, jwt.ErrTokenUsedBeforeIssued, jwt.ErrTokenNotValidYet, jwt.ErrTokenRequiredClaimMissing} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}
