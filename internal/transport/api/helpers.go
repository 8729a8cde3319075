package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// abortWithServiceErr завершает запрос со статусом, соответствующим ошибке сервиса. Тело ответа
// формирует middlewares.Errors.
func abortWithServiceErr(c *gin.Context, err error) {
	_ = c.AbortWithError(middlewares.StatusFor(err), err).SetType(gin.ErrorTypePrivate)
}

// bindJSON разбирает тело запроса. Ошибки формата и валидации отдаются как 422.
func bindJSON(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindJSON(params)
	if bindErr == nil {
		return true
	}

	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) && len(valErrs) > 0 {
		first := valErrs[0]
		abortWithServiceErr(c, domain.NewValidationError(first.Field(), fmt.Sprintf("failed on '%s'", first.Tag())))
		return false
	}
	abortWithServiceErr(c, domain.NewValidationError("body", "malformed JSON"))
	return false
}

// paramID разбирает положительный числовой параметр пути.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithServiceErr(c, domain.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		abortWithServiceErr(c, domain.NewValidationError(name, "must be a non-negative integer"))
		return 0, false
	}
	return uint(v), true
}
