package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, created_at, user_id, type, amount, balance_before, balance_after, description,
	placement_id, withdrawal_id`

// LedgerRepository журнал движений по балансу. Записи только добавляются, методов изменения и удаления нет.
type LedgerRepository struct {
	conn uow.DBTX
}

func NewLedgerRepository(conn uow.DBTX) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

func (l *LedgerRepository) Create(ctx context.Context, args repoargs.LedgerEntryCreate) (*domain.Transaction, error) {
	row := l.conn.QueryRow(ctx, `
		INSERT INTO transactions
			(user_id, type, amount, balance_before, balance_after, description, placement_id, withdrawal_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+ledgerColumns,
		args.UserID,
		string(args.Type),
		args.Amount,
		args.BalanceBefore,
		args.BalanceAfter,
		args.Description,
		args.PlacementID,
		args.WithdrawalID,
	)
	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating %s ledger entry for user %d", args.Type, args.UserID)
	}
	return entry, nil
}

// ListByUser возвращает записи пользователя, начиная с самых новых.
func (l *LedgerRepository) ListByUser(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]domain.Transaction, error) {
	rows, err := l.conn.Query(ctx, `
		SELECT `+ledgerColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, convertErr(err, "listing ledger of user %d", userID)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		entry, scanErr := scanLedgerEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning ledger of user %d", userID)
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing ledger of user %d", userID)
	}
	return entries, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.Transaction, error) {
	var (
		entry   domain.Transaction
		txnType string
	)
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UserID,
		&txnType,
		&entry.Amount,
		&entry.BalanceBefore,
		&entry.BalanceAfter,
		&entry.Description,
		&entry.PlacementID,
		&entry.WithdrawalID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	entry.Type = domain.TransactionType(txnType)
	return &entry, nil
}
