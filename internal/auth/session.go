// Package auth keeps the admin's BaaS session in a signed cookie and
// notifies subscribers when it changes.
package auth

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pycsa-web/internal/baas"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName = "pycsa_admin"

	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyEmail        = "email"

	// refresh a little before the token actually expires
	refreshLeeway = 30 * time.Second
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func init() {
	gob.Register(Flash{})
}

// Provider is the part of the BaaS auth API the manager needs.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*baas.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*baas.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Identity is the signed-in admin.
type Identity struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Claims are the access token claims the site reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager owns the admin session. Every consumer goes through it.
type Manager struct {
	store     sessions.Store
	provider  Provider
	jwtSecret []byte
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewCookieStore creates the signed cookie store for admin sessions.
func NewCookieStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewManager creates a session manager. With an empty jwtSecret token claims
// are read without signature verification; the BaaS still verifies every
// request made with the token.
func NewManager(store sessions.Store, provider Provider, jwtSecret string, logger *zap.Logger) *Manager {
	m := &Manager{
		store:     store,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	if jwtSecret != "" {
		m.jwtSecret = []byte(jwtSecret)
	}
	return m
}

// SignIn exchanges the credentials for a BaaS session and stores it.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, email, password string) (*Identity, error) {
	sess, err := m.provider.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		m.logger.Info("Admin sign-in failed", zap.String("email", email), zap.Error(err))
		if errors.Is(err, baas.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	id, err := m.save(w, r, sess)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Admin signed in", zap.String("user_id", id.UserID), zap.String("email", id.Email))
	m.emit(EventSignedIn, id)
	return id, nil
}

// SignOut revokes the BaaS session and clears the cookie. The cookie is
// cleared even when the revoke call fails.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	token, _ := session.Values[keyAccessToken].(string)

	var revokeErr error
	if token != "" {
		if revokeErr = m.provider.SignOut(r.Context(), token); revokeErr != nil {
			m.logger.Warn("Failed to revoke session", zap.Error(revokeErr))
		}
	}

	m.clear(session)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.emit(EventSignedOut, nil)
	if revokeErr != nil {
		return fmt.Errorf("failed to sign out: %w", revokeErr)
	}
	return nil
}

// Current returns the signed-in admin, refreshing the tokens when the access
// token is about to expire.
func (m *Manager) Current(w http.ResponseWriter, r *http.Request) (*Identity, error) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		// tampered or signed with an old key
		m.logger.Debug("Discarding unreadable session", zap.Error(err))
		return nil, ErrNoSession
	}

	access, _ := session.Values[keyAccessToken].(string)
	refresh, _ := session.Values[keyRefreshToken].(string)
	if access == "" {
		return nil, ErrNoSession
	}

	claims, err := m.parse(access)
	if err == nil && claims.ExpiresAt != nil && m.now().Add(refreshLeeway).Before(claims.ExpiresAt.Time) {
		return identity(access, claims), nil
	}
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		m.logger.Warn("Rejecting session token", zap.Error(err))
		m.clear(session)
		session.Save(r, w)
		return nil, ErrNoSession
	}

	if refresh == "" {
		return nil, ErrSessionExpired
	}
	sess, err := m.provider.RefreshSession(r.Context(), refresh)
	if err != nil {
		m.logger.Info("Session refresh failed", zap.Error(err))
		m.clear(session)
		session.Save(r, w)
		m.emit(EventSignedOut, nil)
		return nil, ErrSessionExpired
	}

	id, err := m.save(w, r, sess)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Session refreshed", zap.String("user_id", id.UserID))
	m.emit(EventTokenRefreshed, id)
	return id, nil
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, sess *baas.Session) (*Identity, error) {
	session, _ := m.store.Get(r, sessionName)
	session.Values[keyAccessToken] = sess.AccessToken
	session.Values[keyRefreshToken] = sess.RefreshToken
	session.Values[keyEmail] = sess.User.Email
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	id := &Identity{
		UserID:      sess.User.ID,
		Email:       sess.User.Email,
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.Expiry(),
	}
	if claims, err := m.parse(sess.AccessToken); err == nil {
		if id.UserID == "" {
			id.UserID = claims.Subject
		}
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return id, nil
}

func (m *Manager) clear(session *sessions.Session) {
	delete(session.Values, keyAccessToken)
	delete(session.Values, keyRefreshToken)
	delete(session.Values, keyEmail)
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	if m.jwtSecret == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, err
		}
		if claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time) {
			return claims, jwt.ErrTokenExpired
		}
		return claims, nil
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.jwtSecret, nil
	}, jwt.WithTimeFunc(m.now))
	return claims, err
}

func identity(access string, claims *Claims) *Identity {
	id := &Identity{UserID: claims.Subject, Email: claims.Email, AccessToken: access}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the signed-in admin in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the admin stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
