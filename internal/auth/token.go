package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/umar/usergroups/internal/models"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrSessionRevoked = errors.New("session revoked")
)

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token is the credential returned to clients on login.
type Token struct {
	Type      string    `json:"type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func GenerateToken(userID, username, jwtSecret string, issuedAt time.Time, ttl time.Duration) (string, *Claims, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issuer mints bearer tokens and tracks each one as a session so it can be
// revoked before it expires.
type Issuer struct {
	secret   string
	ttl      time.Duration
	sessions SessionStore
	now      func() time.Time
}

func NewIssuer(jwtSecret string, ttl time.Duration, sessions SessionStore) *Issuer {
	return &Issuer{secret: jwtSecret, ttl: ttl, sessions: sessions, now: time.Now}
}

func (i *Issuer) Issue(ctx context.Context, u *models.User) (*Token, error) {
	signed, claims, err := GenerateToken(u.ID, u.Username, i.secret, i.now(), i.ttl)
	if err != nil {
		return nil, err
	}
	if err := i.sessions.Save(ctx, claims.ID, u.ID, i.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &Token{Type: "bearer", Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks the signature and expiry of tokenString and that its session
// is still active.
func (i *Issuer) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := ValidateToken(tokenString, i.secret)
	if err != nil {
		return nil, err
	}
	active, err := i.sessions.Active(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !active {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (i *Issuer) Revoke(ctx context.Context, tokenID string) error {
	return i.sessions.Revoke(ctx, tokenID)
}
