package service

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
)

// txRepo возвращает репозиторий, привязанный к транзакции tx.
func txRepo[T any](tx uow.TX, name repoargs.RepositoryName) (T, error) {
	repo, err := uow.GetAs[T](tx, uow.RepositoryName(name))
	if err != nil {
		return repo, fmt.Errorf("get %s repository: %w", name, err)
	}
	return repo, nil
}

// connRepo возвращает репозиторий, работающий вне транзакции.
func connRepo[T any](u uow.UOW, name repoargs.RepositoryName) (T, error) {
	repo, err := uow.GetRepositoryAs[T](u, uow.RepositoryName(name))
	if err != nil {
		return repo, fmt.Errorf("get %s repository: %w", name, err)
	}
	return repo, nil
}

// notFoundOrForbidden скрывает отсутствие записи за ErrNotFoundOrForbidden, не раскрывая вызывающему,
// существует ли чужая запись.
func notFoundOrForbidden(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrNotFoundOrForbidden)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
