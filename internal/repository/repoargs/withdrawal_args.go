package repoargs

import (
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/shopspring/decimal"
)

type WithdrawalCreate struct {
	UserID        int64
	Amount        decimal.Decimal
	Status        domain.WithdrawalStatus
	WalletAddress string
}

type WithdrawalProcess struct {
	ID          int64
	Status      domain.WithdrawalStatus
	ProcessedBy int64
	Comment     string
}
