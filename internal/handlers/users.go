package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserHandler implements account registration, authentication, and profile
// management endpoints.
type UserHandler struct {
	Users    UserStore
	Sessions SessionManager
	Media    MediaStore
	Cleaner  MediaCleaner
	Limiter  RateLimiter
	Cookies  CookieConfig

	MaxUploadBytes int64
	UploadTimeout  time.Duration
	NowFunc        func() time.Time
}

// Register handles POST /api/v1/users/register. The payload is multipart: an
// avatar image is required, a cover image optional.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowAuthAttempt(h.Limiter, r) {
		fail(ctx, w, tooManyRequests("too many registration attempts, try again later"))
		return
	}

	if h.Users == nil || h.Sessions == nil || h.Media == nil {
		logger.Error("registration dependencies unavailable",
			"hasUsers", h.Users != nil, "hasSessions", h.Sessions != nil, "hasMedia", h.Media != nil)
		fail(ctx, w, internalError("registration services unavailable"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		fail(ctx, w, badRequest("invalid multipart payload"))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullname"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		fail(ctx, w, badRequest("fullname, email, username, and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fail(ctx, w, badRequest("invalid email address"))
		return
	}
	if len(password) < 8 {
		fail(ctx, w, badRequest("password must be at least 8 characters"))
		return
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		fail(ctx, w, badRequest("avatar image is required"))
		return
	}
	defer avatarFile.Close()

	avatarURL, err := h.upload(r, "avatars", avatarFile, avatarHeader)
	if err != nil {
		logger.Error("avatar upload failed", "error", err, "username", username)
		fail(ctx, w, err)
		return
	}

	var coverURL string
	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer coverFile.Close()
		coverURL, err = h.upload(r, "covers", coverFile, coverHeader)
		if err != nil {
			logger.Error("cover upload failed", "error", err, "username", username)
			h.cleanup(r, avatarURL)
			fail(ctx, w, err)
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		h.cleanup(r, avatarURL, coverURL)
		fail(ctx, w, internalError("failed to secure password"))
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		Password:  string(hashed),
		Avatar:    avatarURL,
		Cover:     coverURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.cleanup(r, avatarURL, coverURL)
		if errors.Is(err, repositories.ErrConflict) {
			fail(ctx, w, conflict("user with this email or username already exists"))
			return
		}
		logger.Error("failed to create user", "error", err, "username", username)
		fail(ctx, w, internalError("failed to register user"))
		return
	}

	respond(ctx, w, http.StatusCreated, "user registered successfully", user)
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowAuthAttempt(h.Limiter, r) {
		fail(ctx, w, tooManyRequests("too many login attempts, try again later"))
		return
	}

	if h.Users == nil || h.Sessions == nil {
		logger.Error("login dependencies unavailable", "hasUsers", h.Users != nil, "hasSessions", h.Sessions != nil)
		fail(ctx, w, internalError("authentication services unavailable"))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(ctx, w, badRequest("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		fail(ctx, w, badRequest("email and password are required"))
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "email", req.Email, "error", err)
		fail(ctx, w, unauthorized("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		fail(ctx, w, unauthorized("invalid credentials"))
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		fail(ctx, w, internalError("failed to create session"))
		return
	}

	setAuthCookies(w, h.Cookies, tokens)
	respond(ctx, w, http.StatusOK, "user logged in successfully", loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	h.Sessions.Revoke(ctx, userID)
	clearAuthCookies(w, h.Cookies)
	respond(ctx, w, http.StatusOK, "user logged out successfully", struct{}{})
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token is
// read from the auth cookie or, failing that, the request body.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Sessions == nil {
		fail(ctx, w, internalError("session service unavailable"))
		return
	}

	token := refreshToken(r)
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		fail(ctx, w, unauthorized("refresh token is required"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	setAuthCookies(w, h.Cookies, tokens)
	respond(ctx, w, http.StatusOK, "access token refreshed", refreshResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(ctx, w, badRequest("invalid request body"))
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		fail(ctx, w, badRequest("old and new passwords are required"))
		return
	}
	if len(req.NewPassword) < 8 {
		fail(ctx, w, badRequest("password must be at least 8 characters"))
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		fail(ctx, w, badRequest("old password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		fail(ctx, w, internalError("failed to secure password"))
		return
	}

	if err := h.Users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "password changed successfully", struct{}{})
}

// Current handles GET /api/v1/users/current-user.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "current user fetched successfully", user)
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(ctx, w, badRequest("invalid request body"))
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		fail(ctx, w, badRequest("fullname and email are required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fail(ctx, w, badRequest("invalid email address"))
		return
	}

	user, err := h.Users.UpdateAccount(ctx, userID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			fail(ctx, w, conflict("email is already in use"))
			return
		}
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "account details updated successfully", user)
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request, userID string) {
	h.swapImage(w, r, userID, "avatar", "avatars", h.Users.UpdateAvatar, "avatar updated successfully")
}

// UpdateCover handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request, userID string) {
	h.swapImage(w, r, userID, "coverImage", "covers", h.Users.UpdateCover, "cover image updated successfully")
}

// swapImage uploads the replacement image, records it, and schedules the
// previous object for deletion once the database write has committed.
func (h UserHandler) swapImage(
	w http.ResponseWriter,
	r *http.Request,
	userID, field, prefix string,
	update func(ctx context.Context, id, url string) (models.User, string, error),
	message string,
) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Media == nil {
		fail(ctx, w, internalError("media services unavailable"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		fail(ctx, w, badRequest("invalid multipart payload"))
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		fail(ctx, w, badRequest(field+" image is required"))
		return
	}
	defer file.Close()

	location, err := h.upload(r, prefix, file, header)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field, "userId", userID)
		fail(ctx, w, err)
		return
	}

	user, previous, err := update(ctx, userID, location)
	if err != nil {
		h.cleanup(r, location)
		fail(ctx, w, err)
		return
	}

	h.cleanup(r, previous)
	respond(ctx, w, http.StatusOK, message, user)
}

func (h UserHandler) upload(r *http.Request, prefix string, file multipart.File, header *multipart.FileHeader) (string, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout())
	defer cancel()

	key := prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	location, err := h.Media.Save(ctx, key, file)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", gatewayTimeout("media upload timed out")
		}
		return "", internalError("failed to store uploaded file")
	}
	return location, nil
}

func (h UserHandler) cleanup(r *http.Request, locations ...string) {
	if h.Cleaner == nil {
		return
	}
	if err := h.Cleaner.Enqueue(r.Context(), locations...); err != nil {
		logging.FromContext(r.Context()).Warn("failed to enqueue media cleanup", "error", err)
	}
}

func (h UserHandler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return 256 << 20
}

func (h UserHandler) uploadTimeout() time.Duration {
	if h.UploadTimeout > 0 {
		return h.UploadTimeout
	}
	return 60 * time.Second
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}
