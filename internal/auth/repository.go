package auth

import (
	"context"
	"time"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindRoleByID(ctx context.Context, id int64) (*Role, error)
	CreateUser(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID int64, hash string, updatedAt time.Time) error
	TouchPasswordUpdatedAt(ctx context.Context, userID int64, at time.Time) error
}
