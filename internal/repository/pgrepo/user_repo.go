package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, created_at, updated_at, username, balance, total_spent, current_discount, referral_balance`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// FindByID читает пользователя без блокировки. Возвращает domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user %d", id)
	}
	return user, nil
}

// LockByID читает пользователя с блокировкой строки FOR UPDATE до конца транзакции. Все изменения баланса
// проходят через эту блокировку. Превышение lock_timeout возвращается как domain.ErrConcurrencyTimeout.
func (u *UserRepository) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user %d", id)
	}
	return user, nil
}

func (u *UserRepository) UpdateBalance(ctx context.Context, args repoargs.UpdateUserBalance) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		UPDATE users
		SET balance = $2, total_spent = $3, current_discount = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		args.UserID, args.Balance, args.TotalSpent, args.CurrentDiscount,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating balance of user %d", args.UserID)
	}
	return user, nil
}

func (u *UserRepository) UpdateReferralBalance(
	ctx context.Context,
	args repoargs.UpdateReferralBalance,
) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		UPDATE users SET referral_balance = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns,
		args.UserID, args.ReferralBalance,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating referral balance of user %d", args.UserID)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Balance,
		&user.TotalSpent,
		&user.CurrentDiscount,
		&user.ReferralBalance,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
