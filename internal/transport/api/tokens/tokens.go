// Package tokens проверка JWT, выданных сервисом аутентификации. Секрет общий, алгоритм HS256.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID int64            `json:"uid"`
	Role   domain.ActorRole `json:"role,omitempty"`
}

// EffectiveRole роль из токена. Токены без роли принадлежат обычным пользователям.
func (c *UserClaims) EffectiveRole() domain.ActorRole {
	if c.Role == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// GenerateUserJWT подписывает токен. Используется в тестах и служебных утилитах, сервис токены не выдает.
func GenerateUserJWT(userID int64, role domain.ActorRole, expire time.Duration, key []byte) (string, error) {
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
		UserID: userID,
		Role:   role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating user jwt token: %s", err.Error())
	}
	return token, nil
}

func ValidateUserJWT(tokenString string, key []byte) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, new(UserClaims), func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.UserID <= 0 {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
