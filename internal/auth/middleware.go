package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

const sessionKey = "session"

// Provisioner creates the local user row for a subject seen for the first time.
type Provisioner interface {
	EnsureUser(ctx context.Context, id, email, name string) error
}

// Middleware authenticates requests from the session cookie or a bearer token.
type Middleware struct {
	verifier    Verifier
	provisioner Provisioner
	cookieName  string
	devUserID   string
	logger      *logger.Logger

	provisioned sync.Map
}

// NewMiddleware creates the authentication middleware. When verifier is nil and
// devUserID is set, every request is treated as devUserID.
func NewMiddleware(verifier Verifier, provisioner Provisioner, cookieName, devUserID string, log *logger.Logger) *Middleware {
	return &Middleware{
		verifier:    verifier,
		provisioner: provisioner,
		cookieName:  cookieName,
		devUserID:   devUserID,
		logger:      log.WithFields(zap.String("component", "auth")),
	}
}

// RequireSession aborts with 401 unless the request carries a valid session.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.authenticate(c)
		if err != nil {
			httpmw.Abort(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required")
			return
		}

		if err := m.provision(c.Request.Context(), session); err != nil {
			httpmw.RespondError(c, m.logger, err, "provision user")
			return
		}

		c.Set(sessionKey, session)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context) (*Session, error) {
	raw := tokenFromRequest(c.Request, m.cookieName)
	if m.verifier == nil {
		if m.devUserID != "" {
			return &Session{UserID: m.devUserID}, nil
		}
		return nil, ErrInvalidToken
	}
	if raw == "" {
		return nil, ErrInvalidToken
	}
	session, err := m.verifier.Verify(c.Request.Context(), raw)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			m.logger.WithContext(c.Request.Context()).Warn("session verification failed", zap.Error(err))
		}
		return nil, err
	}
	return session, nil
}

func (m *Middleware) provision(ctx context.Context, session *Session) error {
	if m.provisioner == nil {
		return nil
	}
	if _, ok := m.provisioned.Load(session.UserID); ok {
		return nil
	}
	if err := m.provisioner.EnsureUser(ctx, session.UserID, session.Email, session.Name); err != nil {
		return err
	}
	m.provisioned.Store(session.UserID, struct{}{})
	return nil
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}
	// Browsers cannot set headers on WebSocket upgrades.
	return r.URL.Query().Get("access_token")
}

// GetSession returns the session attached by RequireSession.
func GetSession(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}

// UserID returns the authenticated user's id, or "" outside RequireSession.
func UserID(c *gin.Context) string {
	if session, ok := GetSession(c); ok {
		return session.UserID
	}
	return ""
}

type sessionCtxKey struct{}

// WithSession stores session on ctx, also exposing the user id to logger.WithContext.
func WithSession(ctx context.Context, session *Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey{}, session)
	return context.WithValue(ctx, logger.UserIDKey, session.UserID)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return session, ok
}
