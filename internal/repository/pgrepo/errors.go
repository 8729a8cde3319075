package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	lockNotAvailableCode = "55P03"
	serializationCode    = "40001"
	deadlockCode         = "40P01"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - Для ошибок отсутствия данных (pgx.ErrNoRows) возвращает ErrRecordNotFound из domain.
//   - Дубликаты ключей (uniqueViolationCode) превращаются в ErrDuplicateKey.
//   - Нарушение CHECK (баланс ушел в минус) превращается в ErrInsufficientFunds.
//   - Таймаут ожидания блокировки, конфликт сериализации и дедлок превращаются в ErrConcurrencyTimeout.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch {
		case isUniqueViolationErr(pgErr):
			errType = domain.ErrDuplicateKey
		case pgErr.Code == checkViolationCode:
			errType = domain.ErrInsufficientFunds
		case isConcurrencyErr(pgErr):
			errType = domain.ErrConcurrencyTimeout
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}

func isUniqueViolationErr(err *pgconn.PgError) bool {
	return err.Code == uniqueViolationCode
}

func isConcurrencyErr(err *pgconn.PgError) bool {
	switch err.Code {
	case lockNotAvailableCode, serializationCode, deadlockCode:
		return true
	default:
		return false
	}
}
