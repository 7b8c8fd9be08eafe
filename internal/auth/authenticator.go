// Package auth verifies and issues the bearer tokens that gate client
// sessions. Two signing modes share one verification path: an HS256 secret
// held by this process (system clients, tests, the login endpoint) and RS256
// keys fetched from a remote identity provider's JWKS endpoint.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Leeway is the clock-skew tolerance applied to exp and nbf claims.
const Leeway = 300 * time.Second

// ErrAuth is the single error kind surfaced for every verification failure.
// Callers gate on it with errors.Is and do not discriminate further.
var ErrAuth = errors.New("authentication failed")

// Context carries the verified claims of one connection's token. It lives for
// the lifetime of the connection and is never persisted.
type Context struct {
	Issuer    string
	Subject   string
	Scopes    []string
	Audience  string
	ExpiresAt time.Time
}

// HasScope reports whether the token carried the given scope.
func (c *Context) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type issuerConfig struct {
	issuer   string
	audience string
	keyfunc  jwt.Keyfunc
	methods  []string
}

// Authenticator verifies tokens against a set of trusted issuers. Only the
// symmetric issuer, when configured, can also issue tokens.
type Authenticator struct {
	byIssuer map[string]issuerConfig

	hmacIssuer   string
	hmacAudience string
	hmacSecret   []byte
}

// NewSymmetric builds an Authenticator trusting one HS256 issuer whose secret
// this process holds. The result can both verify and issue.
func NewSymmetric(issuer, audience string, secret []byte) *Authenticator {
	a := &Authenticator{
		byIssuer:     make(map[string]issuerConfig),
		hmacIssuer:   issuer,
		hmacAudience: audience,
		hmacSecret:   secret,
	}
	a.byIssuer[issuer] = issuerConfig{
		issuer:   issuer,
		audience: audience,
		keyfunc:  func(*jwt.Token) (any, error) { return secret, nil },
		methods:  []string{jwt.SigningMethodHS256.Alg()},
	}
	return a
}

// AddRemote registers a federated RS256 issuer. Keys are fetched from the
// JWKS endpoint and cached with background refresh; no issuance capability.
func (a *Authenticator) AddRemote(issuer, audience, jwksURL string) error {
	kf, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return fmt.Errorf("fetch jwks for %q: %w", issuer, err)
	}
	a.byIssuer[issuer] = issuerConfig{
		issuer:   issuer,
		audience: audience,
		keyfunc:  kf.Keyfunc,
		methods:  []string{jwt.SigningMethodRS256.Alg()},
	}
	return nil
}

// Verify checks the token's signature, temporal claims (with Leeway), issuer
// and audience against the configuration selected by the token's own issuer
// claim, and returns the extracted Context. Every failure wraps ErrAuth.
func (a *Authenticator) Verify(token string) (*Context, error) {
	unverified := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, unverified); err != nil {
		return nil, fmt.Errorf("%w: malformed token", ErrAuth)
	}
	iss, err := unverified.GetIssuer()
	if err != nil || iss == "" {
		return nil, fmt.Errorf("%w: missing issuer claim", ErrAuth)
	}
	cfg, ok := a.byIssuer[iss]
	if !ok {
		return nil, fmt.Errorf("%w: unknown issuer %q", ErrAuth, iss)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, cfg.keyfunc,
		jwt.WithValidMethods(cfg.methods),
		jwt.WithLeeway(Leeway),
		jwt.WithIssuer(cfg.issuer),
		jwt.WithAudience(cfg.audience),
		jwt.WithExpirationRequired(),
	); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuth, err)
	}

	sub, _ := claims.GetSubject()
	exp, _ := claims.GetExpirationTime()

	ctx := &Context{
		Issuer:   cfg.issuer,
		Subject:  sub,
		Scopes:   extractScopes(claims),
		Audience: cfg.audience,
	}
	if exp != nil {
		ctx.ExpiresAt = exp.Time
	}
	return ctx, nil
}

// Issue signs an HS256 token for the given subject. Only available on an
// Authenticator built with NewSymmetric.
func (a *Authenticator) Issue(subject, scope string, ttl time.Duration) (string, error) {
	if len(a.hmacSecret) == 0 {
		return "", errors.New("authenticator is not configured for issuing tokens")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   a.hmacIssuer,
		"sub":   subject,
		"aud":   a.hmacAudience,
		"scope": scope,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.hmacSecret)
}

// extractScopes reads scopes from either a space-delimited "scope" string
// claim or an "scp" list claim, defaulting to none.
func extractScopes(claims jwt.MapClaims) []string {
	if s, ok := claims["scope"].(string); ok {
		return strings.Fields(s)
	}
	if l, ok := claims["scp"].([]any); ok {
		scopes := make([]string, 0, len(l))
		for _, v := range l {
			scopes = append(scopes, fmt.Sprint(v))
		}
		return scopes
	}
	return nil
}
