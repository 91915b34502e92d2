// Package token provides the bearer token service: issuing and verifying
// signed, time-limited JWTs that embed a subject identity.
//
// Tokens are signed with a server-side HMAC secret under a configured
// algorithm (HS256, HS384, or HS512). A token is valid only before its
// expiry instant and only if its signature verifies under the current
// secret and algorithm.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/mkranz/labtrack/pkg/auth"
)

// ErrInvalidToken is returned by Verify for every failure cause: malformed
// token, unexpected algorithm, bad signature, or expiry. Callers must not
// be able to distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// Config holds the token service configuration.
type Config struct {
	// Secret is the HMAC signing secret. Required.
	Secret string

	// Algorithm is the HMAC signing algorithm: HS256, HS384, or HS512.
	// Default: HS256.
	Algorithm string

	// TTLMinutes is the token lifetime in whole minutes. Default: 30.
	TTLMinutes int
}

// Service issues and verifies signed bearer tokens. It is stateless:
// issuance is a pure function of the inputs and the signing secret.
type Service struct {
	secret []byte
	method jwtlib.SigningMethod
	ttl    time.Duration
}

// New creates a token service from the given configuration.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = "HS256"
	}

	var method jwtlib.SigningMethod
	switch alg {
	case "HS256":
		method = jwtlib.SigningMethodHS256
	case "HS384":
		method = jwtlib.SigningMethodHS384
	case "HS512":
		method = jwtlib.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", alg)
	}

	ttl := cfg.TTLMinutes
	if ttl == 0 {
		ttl = 30
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token: TTL must be positive, got %d minutes", ttl)
	}

	return &Service{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    time.Duration(ttl) * time.Minute,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token embedding the subject, expiring at
// now + TTL. It has no side effects.
func (s *Service) Issue(subject string, now time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token: subject is required")
	}

	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwtlib.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry as of now and returns the
// embedded subject. The expiry comparison is inclusive-exclusive: a token
// is invalid at or after its expiry instant. Every failure returns
// ErrInvalidToken.
func (s *Service) Verify(tokenStr string, now time.Time) (string, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{s.method.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return now }),
		jwtlib.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &jwtlib.RegisteredClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtlib.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	// jwt's expiry check treats exp as a strict lower bound on validity
	// end, but allows now == exp through in some versions. Enforce the
	// inclusive-exclusive contract explicitly.
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// Authenticator adapts the token service to the auth chain contract.
type Authenticator struct {
	service *Service
	now     func() time.Time
}

// NewAuthenticator creates a chain authenticator backed by the token service.
func NewAuthenticator(service *Service) *Authenticator {
	return &Authenticator{service: service, now: time.Now}
}

// Authenticate extracts a bearer token from the Authorization header and
// verifies it. Returns Abstain when no bearer credentials are present, No
// when a bearer token is present but fails verification, and Yes with the
// resolved identity on success.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	// Must be Bearer token.
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	subject, err := a.service.Verify(tokenStr, a.now())
	if err != nil {
		return auth.AuthResult{Decision: auth.No, Err: err}
	}

	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: subject},
	}
}
