package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrValidation          = errors.New("validation error")
	ErrNotFoundOrForbidden = errors.New("not found or forbidden")
	ErrExhaustedCapacity   = errors.New("usage capacity exhausted")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrPublishFailed       = errors.New("content publishing failed")
	ErrConcurrencyTimeout  = errors.New("lock wait timeout")

	ErrAlreadyPlaced = errors.New("project already placed on this site")
	ErrInvalidState  = errors.New("invalid state transition")
)

// ValidationError ошибка формата входных данных. Возвращается до открытия транзакции.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PublishError ошибка внешней системы публикации контента. Откатывает транзакцию покупки целиком.
type PublishError struct {
	SiteURL string
	Err     error
}

func NewPublishError(siteURL string, err error) error {
	return &PublishError{SiteURL: siteURL, Err: err}
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s: %v", e.SiteURL, e.Err)
}

func (e *PublishError) Is(target error) bool {
	return target == ErrPublishFailed
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsRetryable ошибки, после которых клиент может безопасно повторить операцию: состояние гарантированно
// откатилось.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPublishFailed) || errors.Is(err, ErrConcurrencyTimeout)
}

// IsBusinessError ошибки, относящиеся к конкретному элементу запроса. В пакетных операциях такие ошибки
// не прерывают обработку остальных элементов.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrNotFoundOrForbidden,
		ErrExhaustedCapacity,
		ErrInsufficientFunds,
		ErrPublishFailed,
		ErrConcurrencyTimeout,
		ErrAlreadyPlaced,
		ErrInvalidState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
