package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"equiprent-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrUnknownRole  = errors.New("token carries no recognized role")
)

// ActorClaims are the bearer token claims the lifecycle API cares
// about: who the caller is and which marketplace role they act in.
// Tokens are issued by the auth service; this package only validates.
type ActorClaims struct {
	UserID int32  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	// GenerateToken is used by tests and internal tooling; production
	// tokens come from the auth service with the same secret.
	GenerateToken(userID int32, email string, role domain.ActorRole, ttl time.Duration) (string, error)
	// ResolveActor validates the token and maps it to a domain actor.
	ResolveActor(tokenString string) (domain.Actor, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{secret: []byte(secret)}
}

func (m *tokenManager) GenerateToken(userID int32, email string, role domain.ActorRole, ttl time.Duration) (string, error) {
	claims := ActorClaims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "auth-service",
			Audience:  jwt.ClaimStrings{"api-access"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ResolveActor(tokenString string) (domain.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, ErrExpiredToken
		}
		return domain.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return domain.Actor{}, ErrInvalidToken
	}
	if claims.UserID == 0 && claims.Subject != "" {
		uid, _ := strconv.Atoi(claims.Subject)
		claims.UserID = int32(uid)
	}

	switch role := domain.ActorRole(claims.Role); role {
	case domain.RoleCustomer, domain.RoleSeller, domain.RoleStaff:
		return domain.Actor{UserID: claims.UserID, Role: role}, nil
	}
	return domain.Actor{}, ErrUnknownRole
}
