package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

// EnsureSeedAdmin creates the initial admin account when no user with its
// email exists yet. Intended for first boot; existing accounts are left alone.
func EnsureSeedAdmin(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	seed := SeedUser{
		Username: "admin",
		Email:    "admin@pasomonitor.local",
		Password: "admin123",
		Role:     "admin",
	}

	exists, err := userExists(ctx, pool, timeout, seed.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	ctxInsert, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = pool.Exec(ctxInsert, `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), seed.Username, seed.Email, string(hash), seed.Role)
	if err != nil {
		return fmt.Errorf("insert seed user %s: %w", seed.Username, err)
	}

	return nil
}

func userExists(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, email string) (bool, error) {
	ctxCheck, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	row := pool.QueryRow(ctxCheck, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
