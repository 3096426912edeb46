package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fakeUserStore struct {
	byID      map[string]models.User
	byEmail   map[string]models.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]models.User),
	}
}

func (s *fakeUserStore) add(user models.User) {
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return repositories.ErrConflict
	}
	s.add(user)
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UpdateAccount(_ context.Context, id, fullName, email string) (models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	delete(s.byEmail, user.Email)
	user.FullName = fullName
	user.Email = email
	s.add(user)
	return user, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.add(user)
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id, avatarURL string) (models.User, string, error) {
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, "", repositories.ErrNotFound
	}
	previous := user.Avatar
	user.Avatar = avatarURL
	s.add(user)
	return user, previous, nil
}

func (s *fakeUserStore) UpdateCover(_ context.Context, id, coverURL string) (models.User, string, error) {
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, "", repositories.ErrNotFound
	}
	previous := user.Cover
	user.Cover = coverURL
	s.add(user)
	return user, previous, nil
}

type fakeSessionManager struct {
	issued     int
	refreshed  int
	revoked    []string
	refreshErr error
	verifyID   string
	verifyErr  error
}

func (m *fakeSessionManager) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	m.issued++
	return models.SessionTokens{
		AccessToken:      "access-" + userID,
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshToken:     "refresh-" + userID,
		RefreshExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

func (m *fakeSessionManager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	m.refreshed++
	if m.refreshErr != nil {
		return models.SessionTokens{}, m.refreshErr
	}
	return m.Issue(ctx, strings.TrimPrefix(refreshToken, "refresh-"))
}

func (m *fakeSessionManager) VerifyAccess(token string) (string, error) {
	if m.verifyErr != nil {
		return "", m.verifyErr
	}
	if m.verifyID != "" {
		return m.verifyID, nil
	}
	return strings.TrimPrefix(token, "access-"), nil
}

func (m *fakeSessionManager) Revoke(_ context.Context, userID string) {
	m.revoked = append(m.revoked, userID)
}

type fakeMediaStore struct {
	saved   []string
	saveErr error
}

func (s *fakeMediaStore) Save(_ context.Context, name string, _ io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, name)
	return "https://media.test/" + name, nil
}

type fakeCleaner struct {
	enqueued []string
}

func (c *fakeCleaner) Enqueue(_ context.Context, locations ...string) error {
	for _, location := range locations {
		if location != "" {
			c.enqueued = append(c.enqueued, location)
		}
	}
	return nil
}

func registerForm(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("create file %s: %v", name, err)
		}
		if _, err := part.Write([]byte("binary")); err != nil {
			t.Fatalf("write file %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestRegisterCreatesUserWithoutLeakingSecrets(t *testing.T) {
	users := newFakeUserStore()
	media := &fakeMediaStore{}
	handler := UserHandler{
		Users:    users,
		Sessions: &fakeSessionManager{},
		Media:    media,
	}

	body, contentType := registerForm(t, map[string]string{
		"fullname": "Jamie Rivers",
		"email":    "jamie@example.com",
		"username": "jamie",
		"password": "supersecret",
	}, map[string]string{
		"avatar": "avatar.png",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	raw := rec.Body.String()
	if strings.Contains(raw, "supersecret") || strings.Contains(raw, "password") {
		t.Fatalf("response leaked credentials: %s", raw)
	}

	if len(media.saved) != 1 || !strings.HasPrefix(media.saved[0], "avatars/") {
		t.Fatalf("expected avatar upload, got %v", media.saved)
	}

	stored, err := users.FindByEmail(context.Background(), "jamie@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Password == "supersecret" {
		t.Fatal("password stored in plain text")
	}
}

func TestRegisterRequiresAvatar(t *testing.T) {
	handler := UserHandler{
		Users:    newFakeUserStore(),
		Sessions: &fakeSessionManager{},
		Media:    &fakeMediaStore{},
	}

	body, contentType := registerForm(t, map[string]string{
		"fullname": "Jamie Rivers",
		"email":    "jamie@example.com",
		"username": "jamie",
		"password": "supersecret",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newFakeUserStore()
	users.add(models.User{ID: "u1", Email: "jamie@example.com", Username: "jamie"})

	handler := UserHandler{
		Users:    users,
		Sessions: &fakeSessionManager{},
		Media:    &fakeMediaStore{},
	}

	body, contentType := registerForm(t, map[string]string{
		"fullname": "Jamie Rivers",
		"email":    "jamie@example.com",
		"username": "jamie2",
		"password": "supersecret",
	}, map[string]string{
		"avatar": "avatar.png",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec)
	if payload["success"] != false {
		t.Fatalf("expected success=false, got %v", payload["success"])
	}
}

func TestLoginSetsAuthCookies(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := newFakeUserStore()
	users.add(models.User{ID: "u1", Email: "jamie@example.com", Password: string(hashed)})

	handler := UserHandler{Users: users, Sessions: &fakeSessionManager{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"jamie@example.com","password":"supersecret"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var names []string
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
		if !cookie.HttpOnly {
			t.Fatalf("cookie %s must be http-only", cookie.Name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected accessToken and refreshToken cookies, got %v", names)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := newFakeUserStore()
	users.add(models.User{ID: "u1", Email: "jamie@example.com", Password: string(hashed)})

	handler := UserHandler{Users: users, Sessions: &fakeSessionManager{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"jamie@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

func TestLoginRateLimited(t *testing.T) {
	handler := UserHandler{Users: newFakeUserStore(), Sessions: &fakeSessionManager{}, Limiter: denyLimiter{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"jamie@example.com","password":"supersecret"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRefreshTokenFromCookie(t *testing.T) {
	sessions := &fakeSessionManager{}
	handler := UserHandler{Users: newFakeUserStore(), Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "refresh-u1"})
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessions.refreshed != 1 {
		t.Fatalf("expected one refresh, got %d", sessions.refreshed)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessionManager{}
	handler := UserHandler{Users: newFakeUserStore(), Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req, "u1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "u1" {
		t.Fatalf("expected session revoked for u1, got %v", sessions.revoked)
	}
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("oldsecret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := newFakeUserStore()
	users.add(models.User{ID: "u1", Email: "jamie@example.com", Password: string(hashed)})

	handler := UserHandler{Users: users, Sessions: &fakeSessionManager{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
		strings.NewReader(`{"oldPassword":"wrong","newPassword":"newsecret1"}`))
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req, "u1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateAvatarEnqueuesPreviousImage(t *testing.T) {
	users := newFakeUserStore()
	users.add(models.User{ID: "u1", Email: "jamie@example.com", Avatar: "https://media.test/avatars/old.png"})

	cleaner := &fakeCleaner{}
	handler := UserHandler{
		Users:    users,
		Sessions: &fakeSessionManager{},
		Media:    &fakeMediaStore{},
		Cleaner:  cleaner,
	}

	body, contentType := registerForm(t, nil, map[string]string{"avatar": "new.png"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateAvatar(rec, req, "u1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(cleaner.enqueued) != 1 || cleaner.enqueued[0] != "https://media.test/avatars/old.png" {
		t.Fatalf("expected previous avatar scheduled for cleanup, got %v", cleaner.enqueued)
	}
}
