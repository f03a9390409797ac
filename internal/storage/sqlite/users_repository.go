package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/domain/users"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (users.User, error) {
	now := formatTime(time.Now())
	result, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		params.Username, params.Email, params.PasswordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return users.User{}, users.ErrDuplicateEmail
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return users.User{}, fmt.Errorf("insert user id: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (users.User, error) {
	var (
		id                   int64
		username, email      string
		passwordHash         string
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &username, &email, &passwordHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	} else if err != nil {
		return users.User{}, fmt.Errorf("scan user: %w", err)
	}
	return users.Rehydrate(id, username, email, passwordHash, parseTime(createdAt), parseTime(updatedAt)), nil
}
