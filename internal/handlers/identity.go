package handlers

import (
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/models"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls the attributes of the auth cookies issued on login.
type CookieConfig struct {
	Domain string
	Secure bool
}

// authenticatedHandler is an endpoint that requires a verified caller.
type authenticatedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireAuth verifies the caller's access token before invoking next.
func requireAuth(sessions SessionManager, next authenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			fail(r.Context(), w, internalError("authentication services unavailable"))
			return
		}

		token := accessToken(r)
		if token == "" {
			fail(r.Context(), w, unauthorized("unauthorized request"))
			return
		}

		userID, err := sessions.VerifyAccess(token)
		if err != nil {
			fail(r.Context(), w, err)
			return
		}

		next(w, r, userID)
	}
}

// accessToken pulls the bearer credential from the auth cookie, falling back
// to the Authorization header for non-browser clients.
func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func refreshToken(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func setAuthCookies(w http.ResponseWriter, cfg CookieConfig, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
