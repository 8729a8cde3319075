package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/shopspring/decimal"
)

// BillingServicer интерфейс исключительно для моков.
type BillingServicer interface {
	GetBalance(ctx context.Context, userID int64) (*service.BalanceInfo, error)
	Tiers() []discount.Tier
	ListTransactions(ctx context.Context, userID int64, limit, offset uint) ([]domain.Transaction, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*service.BalanceChange, error)
	Purchase(ctx context.Context, args service.PurchaseArgs) (*service.PurchaseResult, error)
	BatchPurchase(ctx context.Context, userID int64, items []service.PurchaseItem) (*service.BatchPurchaseResult, error)
	Renew(ctx context.Context, placementID, userID int64) (*service.RenewResult, error)
	SetAutoRenewal(ctx context.Context, placementID, userID int64, enabled bool) (*domain.Placement, error)
	DeleteAndRefund(
		ctx context.Context,
		placementID, userID int64,
		role domain.ActorRole,
	) (*service.RefundResult, error)
	BatchDeleteAndRefund(
		ctx context.Context,
		userID int64,
		role domain.ActorRole,
		placementIDs []int64,
	) (*service.BatchRefundResult, error)
	AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal, description string) (*service.BalanceChange, error)
}

type ReferralServicer interface {
	WithdrawToBalance(ctx context.Context, userID int64, amount *decimal.Decimal) (*service.ReferralWithdrawResult, error)
	RequestWalletWithdrawal(
		ctx context.Context,
		userID int64,
		amount decimal.Decimal,
		walletAddress string,
	) (*domain.ReferralWithdrawal, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID, adminID int64) (*domain.ReferralWithdrawal, error)
	RejectWithdrawal(ctx context.Context, withdrawalID, adminID int64, reason string) (*domain.ReferralWithdrawal, error)
	ListWithdrawals(ctx context.Context, userID int64) ([]domain.ReferralWithdrawal, error)
}
