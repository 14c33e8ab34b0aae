package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/vitaminpack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, userID uint, at time.Time) error
}

type AuthService struct {
	users      AuthUserRepository
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, bcryptCost: bcrypt.DefaultCost, now: time.Now}
}

func (service *AuthService) Register(ctx context.Context, emailRaw string, password string) (models.User, error) {
	credentials, err := ParseCredentials(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := CheckPassword(credentials.Password, credentials.Email); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, credentials.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), service.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        credentials.Email,
		PasswordHash: string(passwordHash),
		CreatedAt:    service.now().UTC(),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks the password and stamps the login time. Unknown
// addresses and wrong passwords are indistinguishable to the caller.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, password string) (models.User, error) {
	credentials, err := ParseCredentials(emailRaw, password)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := service.users.FindByNormalizedEmail(ctx, credentials.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	loginAt := service.now().UTC()
	if err := service.users.RecordLogin(ctx, user.ID, loginAt); err != nil {
		return models.User{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &loginAt
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (service *AuthService) FindByEmail(ctx context.Context, emailRaw string) (models.User, error) {
	email := NormalizeEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	user, err := service.users.FindByNormalizedEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
