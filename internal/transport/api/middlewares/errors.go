package middlewares

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/gin-gonic/gin"
)

func statusErrorText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusUnprocessableEntity:
		return "unprocessable entity"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "too many requests"
	default:
		return "internal server error"
	}
}

// StatusFor HTTP статус ошибки сервисного слоя.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFoundOrForbidden):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExhaustedCapacity),
		errors.Is(err, domain.ErrAlreadyPlaced),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPublishFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrConcurrencyTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Errors отвечает клиенту по первой ошибке запроса. Ошибки сервисного слоя отдаются с кодом и признаком
// повторяемости, прочие приватные ошибки скрываются за текстом статуса.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// тело ответа уже отдано обработчиком.
		if len(c.Errors) == 0 || c.Writer.Size() > 0 {
			return
		}

		// обрабатываем только первую ошибку
		firstErr := c.Errors[0]
		status := c.Writer.Status()

		var body ErrorResponse
		switch {
		case firstErr.IsType(gin.ErrorTypePublic):
			body.Error = firstErr.Error()
		case domain.IsBusinessError(firstErr.Err):
			body = ErrorResponse{
				Error:     response.ErrorMessage(firstErr.Err),
				Code:      response.ErrorCode(firstErr.Err),
				Retryable: domain.IsRetryable(firstErr.Err),
			}
		default:
			body.Error = statusErrorText(status)
		}

		c.JSON(status, body)
		c.Abort()
	}
}
