package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"paso-monitor-server/internal/config"
	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface the auth layer needs. *repo.UserRepo
// satisfies it; tests substitute in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string, phone *string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id, role string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type AuthService struct {
	users UserStore
	cfg   *config.Config
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	Token       string `json:"token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	RedirectURL string `json:"redirect_url"`
}

// dummyHash is compared against when login hits an unknown email, so both
// failure branches cost one bcrypt verification.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("login-timing-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string, phone *string) (*TokenResponse, error) {
	if len(password) < s.cfg.PasswordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not check existing users", nil)
	}
	if exists {
		return nil, utils.NewAppError(http.StatusBadRequest, "DUPLICATE_EMAIL", "email already exists", nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not secure password", nil)
	}

	// Registration always produces a regular user; roles are granted later
	// by an admin.
	user, err := s.users.Create(ctx, username, email, string(passwordHash), models.RoleUser, phone)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not create user", nil)
	}

	return s.tokenResponse(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	return s.tokenResponse(user)
}

func invalidCredentials() error {
	return utils.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
}

func (s *AuthService) tokenResponse(user *models.User) (*TokenResponse, error) {
	token, expiresIn, err := s.generateToken(user)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not generate token", nil)
	}

	redirect := "/"
	if user.Role == models.RoleAdmin {
		redirect = "/dashboard"
	}

	return &TokenResponse{
		Token:       token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Username:    user.Username,
		Role:        user.Role,
		RedirectURL: redirect,
	}, nil
}

// generateToken embeds username and role for client convenience only; the
// auth guard re-checks the stored role on every request.
func (s *AuthService) generateToken(user *models.User) (string, int64, error) {
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(s.cfg.JWTExpiry)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.cfg.JWTExpiry.Seconds()), nil
}
