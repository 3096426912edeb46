package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an
	// active session. Reusing a rotated-out token lands here as well.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// SessionStore persists refresh tokens. Each user has at most one active
// session: saving a session replaces whatever the user held before.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	FindByToken(ctx context.Context, refreshToken string) (Session, error)
	DeleteForUser(ctx context.Context, userID string) error
}

// Session is the single active refresh token issued to a user.
type Session struct {
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}

// Manager issues access/refresh token pairs and rotates refresh tokens on use.
type Manager struct {
	tokens     *TokenManager
	refreshTTL time.Duration

	store SessionStore
}

// NewManager constructs a Manager backed by the provided token signer and store.
func NewManager(tokens *TokenManager, refreshTTL time.Duration, store SessionStore) *Manager {
	if tokens == nil {
		panic("auth: token manager must not be nil")
	}
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		tokens:     tokens,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// Issue creates a new token pair for the user, displacing any prior session.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	accessToken, accessExpiresAt, err := m.tokens.Issue(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: time.Now().UTC().Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the user's current one; rotation replaces it, so a stale token is
// rejected with ErrSessionNotFound.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.FindByToken(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		_ = m.store.DeleteForUser(ctx, session.UserID)
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	return m.Issue(ctx, session.UserID)
}

// VerifyAccess validates an access token and returns the bearer's user id.
func (m *Manager) VerifyAccess(token string) (string, error) {
	return m.tokens.Verify(token)
}

// Revoke ends the user's active session, if any.
func (m *Manager) Revoke(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	_ = m.store.DeleteForUser(ctx, userID)
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
