package repoargs

import (
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerEntryCreate struct {
	UserID        int64
	Type          domain.TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	PlacementID   *int64
	WithdrawalID  *int64
}
