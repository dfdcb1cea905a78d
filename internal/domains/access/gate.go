// Package access verifies that callers hold the administrative credential
// required by the order endpoints.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultClockSkew is tolerated on exp/iat/nbf checks.
	DefaultClockSkew = 30 * time.Second

	ResourceOrders = "orders"
	ActionManage   = "manage"
)

var (
	// ErrUnauthorized covers missing, malformed, expired and non-admin credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingSecret is returned when the gate is built without a signing secret.
	ErrMissingSecret = errors.New("jwt secret is required")
)

// AdminIdentity is the verified caller.
type AdminIdentity struct {
	Subject string
	Email   string
	Role    string
}

// Claims is the token payload issued by the identity service.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// PermissionChecker decides whether a role may act on a resource.
type PermissionChecker interface {
	Allowed(role, resource, action string) (bool, error)
}

// Config configures the gate.
type Config struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Policy    PermissionChecker
	Now       func() time.Time
}

// Gate validates bearer credentials and checks the admin permission.
type Gate struct {
	secret []byte
	policy PermissionChecker
	parser *jwt.Parser
}

// NewGate builds a gate. When no policy is supplied the embedded default
// RBAC policy is used.
func NewGate(cfg Config) (*Gate, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	policy := cfg.Policy
	if policy == nil {
		p, err := NewDefaultPolicy()
		if err != nil {
			return nil, fmt.Errorf("load default access policy: %w", err)
		}
		policy = p
	}
	skew := cfg.ClockSkew
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(skew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}
	return &Gate{secret: cfg.Secret, policy: policy, parser: jwt.NewParser(opts...)}, nil
}

// Authorize verifies the credential and returns the admin identity behind it.
// The credential may carry a "Bearer " prefix.
func (g *Gate) Authorize(_ context.Context, credential string) (*AdminIdentity, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: access gate not configured", ErrUnauthorized)
	}
	token := StripBearer(credential)
	if token == "" {
		return nil, fmt.Errorf("%w: missing credential", ErrUnauthorized)
	}
	claims := &Claims{}
	if _, err := g.parser.ParseWithClaims(token, claims, g.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrUnauthorized)
	}
	ok, err := g.policy.Allowed(claims.Role, ResourceOrders, ActionManage)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate policy: %w", ErrUnauthorized, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: role %q may not manage orders", ErrUnauthorized, claims.Role)
	}
	return &AdminIdentity{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

func (g *Gate) keyFunc(_ *jwt.Token) (any, error) {
	return g.secret, nil
}

// StripBearer removes an optional case-insensitive "Bearer " prefix.
func StripBearer(credential string) string {
	credential = strings.TrimSpace(credential)
	parts := strings.SplitN(credential, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	if strings.EqualFold(credential, "bearer") {
		return ""
	}
	return credential
}
