package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/vitaminpack/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenSpent    = errors.New("refresh token already rotated or revoked")
	ErrCallbackCodeSpent    = errors.New("callback code unknown, expired or already used")
)

// ProfileStore is implemented by the SQLite (gorm) and Postgres (sqlx)
// profile repositories.
type ProfileStore interface {
	Exists(ctx context.Context, userID uint) (bool, error)
	FindByUserID(ctx context.Context, userID uint) (models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

type Repositories struct {
	Users         *UserRepository
	RefreshTokens *RefreshTokenRepository
	CallbackCodes *CallbackCodeRepository
	Profiles      ProfileStore
}

// NewRepositories keeps every table in the SQLite database unless a separate
// profile store is supplied.
func NewRepositories(database *gorm.DB, profiles ProfileStore) *Repositories {
	if profiles == nil {
		profiles = NewProfileRepository(database)
	}
	return &Repositories{
		Users:         NewUserRepository(database),
		RefreshTokens: NewRefreshTokenRepository(database),
		CallbackCodes: NewCallbackCodeRepository(database),
		Profiles:      profiles,
	}
}
