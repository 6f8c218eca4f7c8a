// Package auth validates identity-provider session tokens and exposes the
// authenticated user to handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
)

// ErrInvalidToken is returned for any token that fails parsing, signature or
// claim validation.
var ErrInvalidToken = errors.New("invalid session token")

const defaultLeeway = 30 * time.Second

var asymmetricAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.EdDSA,
}

// Session is the authenticated identity attached to a request.
type Session struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// profileClaims are the non-registered claims the identity provider includes.
type profileClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verifier turns a raw token into a Session.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Session, error)
}

// TokenVerifier checks JWTs signed either with a shared HS256 secret or with a
// key from the provider's JWKS.
type TokenVerifier struct {
	secret   []byte
	keys     *KeySet
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier builds a verifier from cfg. It returns a nil Verifier when
// neither a secret nor a key set is configured.
func NewVerifier(cfg config.AuthConfig, client *http.Client) Verifier {
	v := &TokenVerifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   defaultLeeway,
		now:      time.Now,
	}
	if cfg.JWTSecret != "" {
		v.secret = []byte(cfg.JWTSecret)
	}
	if url := cfg.ResolvedJWKSURL(); url != "" {
		v.keys = NewKeySet(url, client)
	}
	if v.secret == nil && v.keys == nil {
		return nil
	}
	return v
}

// Verify validates raw and returns the session it describes.
func (v *TokenVerifier) Verify(ctx context.Context, raw string) (*Session, error) {
	algs := asymmetricAlgorithms
	if v.secret != nil {
		algs = append([]jose.SignatureAlgorithm{jose.HS256}, algs...)
	}
	tok, err := jwt.ParseSigned(raw, algs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(tok.Headers) == 0 {
		return nil, ErrInvalidToken
	}

	key, err := v.keyFor(ctx, tok.Headers[0])
	if err != nil {
		return nil, err
	}

	var std jwt.Claims
	var profile profileClaims
	if err := tok.Claims(key, &std, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	expected := jwt.Expected{Issuer: v.issuer, Time: v.now()}
	if v.audience != "" {
		expected.AnyAudience = jwt.Audience{v.audience}
	}
	if err := std.ValidateWithLeeway(expected, v.leeway); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if std.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &Session{UserID: std.Subject, Email: profile.Email, Name: profile.Name}
	if std.Expiry != nil {
		session.ExpiresAt = std.Expiry.Time()
	}
	return session, nil
}

func (v *TokenVerifier) keyFor(ctx context.Context, header jose.Header) (interface{}, error) {
	if header.Algorithm == string(jose.HS256) {
		if v.secret == nil {
			return nil, fmt.Errorf("%w: unexpected HS256 token", ErrInvalidToken)
		}
		return v.secret, nil
	}
	if v.keys == nil {
		return nil, fmt.Errorf("%w: no key set configured for %s", ErrInvalidToken, header.Algorithm)
	}
	key, err := v.keys.Lookup(ctx, header.KeyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return key.Key, nil
}
