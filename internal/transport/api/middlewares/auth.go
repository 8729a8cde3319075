package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
)

var ErrTokenNotExist = errors.New("token not exist")

const (
	CurrentUserIDKey = "currentUserID"
	CurrentRoleKey   = "currentRole"
)

const bearer = "Bearer "

func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (*tokens.UserClaims, error) {
	tokenHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(tokenHeader, bearer) {
		return nil, ErrTokenNotExist
	}
	return tokens.ValidateUserJWT(tokenHeader[len(bearer):], jwtTokenSecret) //nolint:wrapcheck
}

// AuthRequired проверяет токен. Записывает в контекст id пользователя (CurrentUserIDKey) и его роль
// (CurrentRoleKey).
func AuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			if !errors.Is(err, ErrTokenNotExist) {
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			}
			return
		}
		c.Set(CurrentUserIDKey, claims.UserID)
		c.Set(CurrentRoleKey, claims.EffectiveRole())
		c.Next()
	}
}

// AdminRequired должен стоять после AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUserID возвращает 0, если запрос не прошел AuthRequired.
func CurrentUserID(c *gin.Context) int64 {
	return c.GetInt64(CurrentUserIDKey)
}

func CurrentRole(c *gin.Context) domain.ActorRole {
	v, exist := c.Get(CurrentRoleKey)
	if !exist {
		return domain.RoleUser
	}
	role, ok := v.(domain.ActorRole)
	if !ok {
		return domain.RoleUser
	}
	return role
}
