package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

var ErrDuplicateEmail = errors.New("email is already taken")

type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
}
