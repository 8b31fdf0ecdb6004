package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"paso-monitor-server/internal/config"
	"paso-monitor-server/internal/http/middleware"
	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/repo"
	"paso-monitor-server/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (s *memUsers) Create(ctx context.Context, username, email, passwordHash, role string, phone *string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	user := &models.User{
		ID:           fmt.Sprintf("u-%d", s.seq),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Phone:        phone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	snapshot := *user
	return &snapshot, nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			snapshot := *user
			return &snapshot, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (s *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUsers) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *memUsers) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return false, nil
	}
	user.Role = role
	return true, nil
}

func (s *memUsers) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

type memPassStore struct {
	record *models.PassStatus
}

func (s *memPassStore) Get(ctx context.Context) (*models.PassStatus, error) {
	if s.record == nil {
		return nil, repo.ErrNoStatus
	}
	return s.record, nil
}

type memWeatherStore struct {
	snap *models.WeatherSnapshot
}

func (s *memWeatherStore) Latest(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	if s.snap == nil || s.snap.City != city {
		return nil, repo.ErrNoWeather
	}
	return s.snap, nil
}

type testEnv struct {
	router *gin.Engine
	users  *memUsers
	pass   *memPassStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:          "test-secret-key-at-least-32-chars-long",
		JWTExpiry:          time.Hour,
		RateLimitPerMinute: 1000,
		PasswordMinLen:     4,
		WeatherCity:        "Mendoza",
	}
	users := newMemUsers()
	pass := &memPassStore{}
	weather := &memWeatherStore{}

	router := NewRouter(Dependencies{
		Config:       cfg,
		UserStore:    users,
		AuthService:  services.NewAuthService(users, cfg),
		UserService:  services.NewUserService(users),
		PassStore:    pass,
		WeatherStore: weather,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter:  middleware.NewRateLimiter(cfg.RateLimitPerMinute),
	})

	return &testEnv{router: router, users: users, pass: pass}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %s", email, w.Code, w.Body.String())
	}
	return tokenFrom(t, w)
}

func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := e.users.Create(context.Background(), "root", "root@example.com", string(hash), models.RoleAdmin, nil); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "root@example.com",
		"password": "admin123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status = %d, body %s", w.Code, w.Body.String())
	}
	return tokenFrom(t, w)
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in response %s", w.Body.String())
	}
	return resp.Token
}

func TestAdminEndpointsRejectRegularUsers(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.register(t, "maria", "maria@example.com", "secret1")

	for _, call := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPatch, "/api/v1/users/u-999"},
		{http.MethodDelete, "/api/v1/users/u-999"},
	} {
		w := env.do(t, call.method, call.path, userToken, gin.H{"role": "admin"})
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403 (body %s)", call.method, call.path, w.Code, w.Body.String())
		}
	}
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "maria", "maria@example.com", "secret1")
	adminToken := env.seedAdmin(t)

	w := env.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list users: status = %d, body %s", w.Code, w.Body.String())
	}
	var listed []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d users, want 2", len(listed))
	}
	for _, u := range listed {
		if _, leaked := u["password_hash"]; leaked {
			t.Error("password hash exposed in user listing")
		}
	}

	target, err := env.users.GetByEmail(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("lookup target: %v", err)
	}

	w = env.do(t, http.MethodPatch, "/api/v1/users/"+target.ID, adminToken, gin.H{"role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("promote: status = %d, body %s", w.Code, w.Body.String())
	}
	promoted, _ := env.users.GetByID(context.Background(), target.ID)
	if promoted.Role != models.RoleAdmin {
		t.Errorf("target role = %q, want admin", promoted.Role)
	}

	w = env.do(t, http.MethodPatch, "/api/v1/users/"+target.ID, adminToken, gin.H{"role": "owner"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid role: status = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodDelete, "/api/v1/users/"+target.ID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := env.users.GetByID(context.Background(), target.ID); err == nil {
		t.Error("target still present after delete")
	}
}

func TestAdminCannotTargetSelf(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)

	admin, err := env.users.GetByEmail(context.Background(), "root@example.com")
	if err != nil {
		t.Fatalf("lookup admin: %v", err)
	}

	w := env.do(t, http.MethodPatch, "/api/v1/users/"+admin.ID, adminToken, gin.H{"role": "user"})
	if w.Code != http.StatusForbidden {
		t.Errorf("self-demote: status = %d, want 403 (body %s)", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID, adminToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("self-delete: status = %d, want 403 (body %s)", w.Code, w.Body.String())
	}

	if _, err := env.users.GetByID(context.Background(), admin.ID); err != nil {
		t.Error("admin account must be unchanged after rejected self-targeting")
	}
}

func TestPassRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/pass", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated pass read: status = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/pass/public", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("public pass read without record: status = %d, want 404", w.Code)
	}

	env.pass.record = &models.PassStatus{Name: "Cristo Redentor", Status: models.StatusOpen, UpdatedAt: time.Now()}
	userToken := env.register(t, "maria", "maria@example.com", "secret1")

	w = env.do(t, http.MethodGet, "/api/v1/pass", userToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated pass read: status = %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/pass/public", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("public pass read: status = %d", w.Code)
	}
}

func TestWeatherAndHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/weather", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("weather without snapshot: status = %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("healthz: status = %d, want 200", w.Code)
	}
}

func TestRegisterDuplicateEmailOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "maria", "maria@example.com", "secret1")

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "otra",
		"email":    "maria@example.com",
		"password": "secret2",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
}

func TestMeRoute(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.register(t, "maria", "maria@example.com", "secret1")

	w := env.do(t, http.MethodGet, "/api/v1/me", userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status = %d, body %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if body["username"] != "maria" || body["role"] != models.RoleUser {
		t.Errorf("me = %v", body)
	}
}
