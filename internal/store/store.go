package store

import (
	"context"
	"errors"
	"time"

	"teklip/marketplace/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)

type UserStore interface {
	// CreateUser fails with ErrConflict when the email (or a set phone number) is taken.
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
}

type AuthCodeStore interface {
	CreateAuthCode(ctx context.Context, c model.AuthCode) (model.AuthCode, error)
	// FindAuthCode returns a matching code that is still valid at now without consuming it.
	FindAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error)
	// ConsumeAuthCode atomically finds and deletes a matching code that is still valid at now.
	ConsumeAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error)
	DeleteAuthCodes(ctx context.Context, userID string, typ model.AuthCodeType) (int, error)
	DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int, error)
}

type PostFilter struct {
	OwnerID  string
	Status   model.PostStatus
	Category model.PostCategory
	Limit    int
}

type PostStore interface {
	CreatePost(ctx context.Context, p model.Post) (model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error)
	UpdatePost(ctx context.Context, p model.Post) (model.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type Store interface {
	UserStore
	AuthCodeStore
	PostStore
}

const DefaultListLimit = 50
const MaxListLimit = 200

// NormalizeLimit clamps a caller supplied list limit.
func NormalizeLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}
