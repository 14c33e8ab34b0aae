package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"
	"github.com/terraincognita07/vitaminpack/internal/db"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/models"
	"github.com/terraincognita07/vitaminpack/internal/security"
)

const (
	AccessCookieName  = "vp_access"
	RefreshCookieName = "vp_refresh"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour

	// Parallel requests carrying the same refresh cookie race to rotate it.
	// A token rotated less than this long ago is still accepted, without a
	// second rotation.
	refreshReuseGrace = 10 * time.Second

	refreshCookiePurpose = "refresh"
	callbackCodePurpose  = "auth_callback"
	callbackCodeTTL      = 10 * time.Minute
)

var ErrInvalidCallbackCode = errors.New("invalid callback code")

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByID(ctx context.Context, tokenID string) (models.RefreshToken, error)
	Rotate(ctx context.Context, currentID string, next *models.RefreshToken, now time.Time) error
	Revoke(ctx context.Context, tokenID string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint, now time.Time) error
}

type CallbackCodeRepository interface {
	Create(ctx context.Context, code *models.CallbackCode) error
	Consume(ctx context.Context, codeID string, userID uint, now time.Time) error
}

type accessClaims struct {
	UserID  uint   `json:"uid"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type SessionConfig struct {
	SecretKey    []byte
	CookieSecure bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SessionService is the auth backend behind the gate: short-lived access
// tokens plus rotating refresh tokens, both carried in cookies.
type SessionService struct {
	tokens       RefreshTokenRepository
	codes        CallbackCodeRepository
	codec        *security.CookieCodec
	secretKey    []byte
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          func() time.Time
}

func NewSessionService(tokens RefreshTokenRepository, codes CallbackCodeRepository, config SessionConfig) (*SessionService, error) {
	codec, err := security.NewCookieCodec(config.SecretKey)
	if err != nil {
		return nil, err
	}
	accessTTL := config.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	refreshTTL := config.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &SessionService{
		tokens:       tokens,
		codes:        codes,
		codec:        codec,
		secretKey:    config.SecretKey,
		cookieSecure: config.CookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		now:          time.Now,
	}, nil
}

func FormatUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func ParseUserID(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(parsed), nil
}

// Resolve implements gate.SessionResolver. Bad or stale credentials resolve to
// an anonymous session with cookie deletions; storage failures are returned
// as errors so the gate can fail open without touching the cookies.
func (service *SessionService) Resolve(ctx context.Context, cookies gate.CookieJar) (gate.Session, []gate.CookieOp, error) {
	rawAccess, hasAccess := cookies.Get(AccessCookieName)
	if strings.TrimSpace(rawAccess) != "" {
		if claims, err := service.parseToken(rawAccess, ""); err == nil {
			return gate.Authenticated(FormatUserID(claims.UserID)), nil, nil
		}
	}

	rawRefresh, _ := cookies.Get(RefreshCookieName)
	if strings.TrimSpace(rawRefresh) == "" {
		if hasAccess {
			return gate.Anonymous, []gate.CookieOp{gate.DeleteCookie(AccessCookieName, service.cookieSecure)}, nil
		}
		return gate.Anonymous, nil, nil
	}

	tokenID, secret, err := service.openRefreshCookie(rawRefresh)
	if err != nil {
		return gate.Anonymous, service.ClearCookies(), nil
	}

	stored, err := service.tokens.FindByID(ctx, tokenID)
	if errors.Is(err, db.ErrRefreshTokenNotFound) {
		return gate.Anonymous, service.ClearCookies(), nil
	}
	if err != nil {
		return gate.Anonymous, nil, fmt.Errorf("load refresh token: %w", err)
	}
	if !security.SecretMatchesHash(secret, stored.SecretHash) {
		return gate.Anonymous, service.ClearCookies(), nil
	}

	now := service.now().UTC()
	if stored.RevokedAt != nil {
		// Logout revokes without a successor; only a rotated token being
		// replayed points at a stolen cookie.
		if stored.ReplacedBy == "" {
			return gate.Anonymous, service.ClearCookies(), nil
		}
		if now.Sub(*stored.RevokedAt) < refreshReuseGrace {
			return gate.Authenticated(FormatUserID(stored.UserID)), nil, nil
		}
		if err := service.tokens.RevokeAllForUser(ctx, stored.UserID, now); err != nil {
			return gate.Anonymous, nil, fmt.Errorf("revoke reused refresh chain: %w", err)
		}
		return gate.Anonymous, service.ClearCookies(), nil
	}
	if !stored.Usable(now) {
		return gate.Anonymous, service.ClearCookies(), nil
	}

	next, refreshValue, err := service.newRefreshToken(stored.UserID, now)
	if err != nil {
		return gate.Anonymous, nil, err
	}
	if err := service.tokens.Rotate(ctx, stored.ID, &next, now); err != nil {
		if errors.Is(err, db.ErrRefreshTokenSpent) {
			return gate.Authenticated(FormatUserID(stored.UserID)), nil, nil
		}
		return gate.Anonymous, nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	ops, err := service.sessionCookies(stored.UserID, refreshValue, now)
	if err != nil {
		return gate.Anonymous, nil, err
	}
	return gate.Authenticated(FormatUserID(stored.UserID)), ops, nil
}

// IssueSession starts a new refresh chain for the user.
func (service *SessionService) IssueSession(ctx context.Context, userID uint) ([]gate.CookieOp, error) {
	now := service.now().UTC()
	token, refreshValue, err := service.newRefreshToken(userID, now)
	if err != nil {
		return nil, err
	}
	if err := service.tokens.Create(ctx, &token); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return service.sessionCookies(userID, refreshValue, now)
}

// RevokeSession ends the refresh chain named by the cookie, if any. The
// returned deletions are valid even when an error is returned.
func (service *SessionService) RevokeSession(ctx context.Context, cookies gate.CookieJar) ([]gate.CookieOp, error) {
	ops := service.ClearCookies()
	rawRefresh, _ := cookies.Get(RefreshCookieName)
	if strings.TrimSpace(rawRefresh) == "" {
		return ops, nil
	}
	tokenID, _, err := service.openRefreshCookie(rawRefresh)
	if err != nil {
		return ops, nil
	}
	if err := service.tokens.Revoke(ctx, tokenID, service.now().UTC()); err != nil {
		return ops, fmt.Errorf("revoke refresh token: %w", err)
	}
	return ops, nil
}

func (service *SessionService) ClearCookies() []gate.CookieOp {
	return []gate.CookieOp{
		gate.DeleteCookie(AccessCookieName, service.cookieSecure),
		gate.DeleteCookie(RefreshCookieName, service.cookieSecure),
	}
}

// IssueCallbackCode records a sign-in code for the user and returns it signed.
// The code must be delivered out of band; it signs in whoever presents it.
func (service *SessionService) IssueCallbackCode(ctx context.Context, userID uint) (string, error) {
	now := service.now().UTC()
	record := models.CallbackCode{
		ID:        ksuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(callbackCodeTTL),
		CreatedAt: now,
	}
	if err := service.codes.Create(ctx, &record); err != nil {
		return "", fmt.Errorf("store callback code: %w", err)
	}
	return service.signToken(userID, callbackCodePurpose, record.ID, callbackCodeTTL)
}

// ExchangeCallbackCode accepts each code once.
func (service *SessionService) ExchangeCallbackCode(ctx context.Context, code string) (uint, error) {
	claims, err := service.parseToken(code, callbackCodePurpose)
	if err != nil || claims.ID == "" {
		return 0, ErrInvalidCallbackCode
	}
	err = service.codes.Consume(ctx, claims.ID, claims.UserID, service.now().UTC())
	if errors.Is(err, db.ErrCallbackCodeSpent) {
		return 0, ErrInvalidCallbackCode
	}
	if err != nil {
		return 0, fmt.Errorf("consume callback code: %w", err)
	}
	return claims.UserID, nil
}

func (service *SessionService) newRefreshToken(userID uint, now time.Time) (models.RefreshToken, string, error) {
	secret, err := security.NewRefreshSecret()
	if err != nil {
		return models.RefreshToken{}, "", fmt.Errorf("generate refresh secret: %w", err)
	}

	token := models.RefreshToken{
		ID:         ksuid.New().String(),
		UserID:     userID,
		SecretHash: security.HashSecret(secret),
		ExpiresAt:  now.Add(service.refreshTTL),
		CreatedAt:  now,
	}
	sealed, err := service.codec.Seal(refreshCookiePurpose, []byte(token.ID+"."+secret))
	if err != nil {
		return models.RefreshToken{}, "", err
	}
	return token, sealed, nil
}

func (service *SessionService) openRefreshCookie(raw string) (string, string, error) {
	plaintext, err := service.codec.Open(refreshCookiePurpose, raw)
	if err != nil {
		return "", "", err
	}
	tokenID, secret, found := strings.Cut(string(plaintext), ".")
	if !found || tokenID == "" || secret == "" {
		return "", "", security.ErrInvalidCookieValue
	}
	return tokenID, secret, nil
}

func (service *SessionService) sessionCookies(userID uint, refreshValue string, now time.Time) ([]gate.CookieOp, error) {
	accessToken, err := service.signToken(userID, "", "", service.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	expires := now.Add(service.refreshTTL)
	return []gate.CookieOp{
		service.sessionCookie(AccessCookieName, accessToken, expires),
		service.sessionCookie(RefreshCookieName, refreshValue, expires),
	}, nil
}

func (service *SessionService) sessionCookie(name string, value string, expires time.Time) gate.CookieOp {
	return gate.CookieOp{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   service.cookieSecure,
		SameSite: "Lax",
	}
}

func (service *SessionService) signToken(userID uint, purpose string, tokenID string, ttl time.Duration) (string, error) {
	now := service.now()
	claims := accessClaims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   FormatUserID(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(service.secretKey)
}

func (service *SessionService) parseToken(raw string, purpose string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		return service.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose || claims.UserID == 0 {
		return nil, errors.New("invalid token purpose")
	}
	return claims, nil
}
