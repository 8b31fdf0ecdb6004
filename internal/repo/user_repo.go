package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paso-monitor-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound distinguishes an absent user from a store failure; callers
// map it to 404 and everything else to 500.
var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewUserRepo(pool *pgxpool.Pool, timeout time.Duration) *UserRepo {
	return &UserRepo{pool: pool, timeout: timeout}
}

func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string, phone *string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Phone:        phone,
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.Phone)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, phone, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, phone, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)

	return scanUser(row)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email, password_hash, role, phone, created_at, updated_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Phone,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`, role, id)
	if err != nil {
		return false, fmt.Errorf("update role: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
