package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, created_at, updated_at, user_id, amount, status, wallet_address, processed_by,
	processed_at, comment`

type WithdrawalRepository struct {
	conn uow.DBTX
}

func NewWithdrawalRepository(conn uow.DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{conn: conn}
}

func (w *WithdrawalRepository) Create(
	ctx context.Context,
	args repoargs.WithdrawalCreate,
) (*domain.ReferralWithdrawal, error) {
	row := w.conn.QueryRow(ctx, `
		INSERT INTO referral_withdrawals (user_id, amount, status, wallet_address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+withdrawalColumns,
		args.UserID, args.Amount, string(args.Status), args.WalletAddress,
	)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "creating referral withdrawal for user %d", args.UserID)
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) FindByID(ctx context.Context, id int64) (*domain.ReferralWithdrawal, error) {
	row := w.conn.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM referral_withdrawals WHERE id = $1`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "finding referral withdrawal %d", id)
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) LockByID(ctx context.Context, id int64) (*domain.ReferralWithdrawal, error) {
	row := w.conn.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM referral_withdrawals WHERE id = $1 FOR UPDATE`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "locking referral withdrawal %d", id)
	}
	return withdrawal, nil
}

// Process фиксирует решение администратора по заявке.
func (w *WithdrawalRepository) Process(
	ctx context.Context,
	args repoargs.WithdrawalProcess,
) (*domain.ReferralWithdrawal, error) {
	row := w.conn.QueryRow(ctx, `
		UPDATE referral_withdrawals
		SET status = $2, processed_by = $3, processed_at = now(), comment = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+withdrawalColumns,
		args.ID, string(args.Status), args.ProcessedBy, args.Comment,
	)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "processing referral withdrawal %d", args.ID)
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ReferralWithdrawal, error) {
	rows, err := w.conn.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM referral_withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "listing referral withdrawals of user %d", userID)
	}
	defer rows.Close()

	var withdrawals []domain.ReferralWithdrawal
	for rows.Next() {
		withdrawal, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning referral withdrawals of user %d", userID)
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing referral withdrawals of user %d", userID)
	}
	return withdrawals, nil
}

func scanWithdrawal(row pgx.Row) (*domain.ReferralWithdrawal, error) {
	var (
		withdrawal domain.ReferralWithdrawal
		status     string
	)
	err := row.Scan(
		&withdrawal.ID,
		&withdrawal.CreatedAt,
		&withdrawal.UpdatedAt,
		&withdrawal.UserID,
		&withdrawal.Amount,
		&status,
		&withdrawal.WalletAddress,
		&withdrawal.ProcessedBy,
		&withdrawal.ProcessedAt,
		&withdrawal.Comment,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	withdrawal.Status = domain.WithdrawalStatus(status)
	return &withdrawal, nil
}
