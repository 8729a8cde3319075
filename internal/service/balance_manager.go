package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BalanceManager единственное место, где меняется баланс пользователя. Каждое изменение сопровождается ровно
// одной записью леджера в той же транзакции. Методы работают только внутри uow.Do и перечитывают
// пользователя под блокировкой.
type BalanceManager struct {
	resolver *discount.Resolver
	metrics  MetricsRecorder
	l        *logrus.Entry
}

func NewBalanceManager(resolver *discount.Resolver, l *logrus.Logger) *BalanceManager {
	return &BalanceManager{
		resolver: resolver,
		metrics:  nopMetrics{},
		l:        l.WithField("component", "balance_manager"),
	}
}

func (b *BalanceManager) SetMetrics(m MetricsRecorder) *BalanceManager {
	if m != nil {
		b.metrics = m
	}
	return b
}

type ChargeArgs struct {
	UserID      int64
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description string
	PlacementID *int64
}

type CreditArgs struct {
	UserID       int64
	Amount       decimal.Decimal
	Type         domain.TransactionType
	Description  string
	PlacementID  *int64
	WithdrawalID *int64
}

type AdjustArgs struct {
	UserID      int64
	Delta       decimal.Decimal
	Description string
}

// BalanceChange состояние пользователя после изменения и документирующая его запись леджера.
type BalanceChange struct {
	User  *domain.User
	Entry *domain.Transaction
}

// LockUser блокирует строку пользователя до конца транзакции. Должен вызываться первым в любой денежной
// операции.
func (b *BalanceManager) LockUser(ctx context.Context, tx uow.TX, userID int64) (*domain.User, error) {
	users, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	user, err := users.LockByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "lock user %d", userID)
	}
	return user, nil
}

// Charge списывает amount с баланса. Для покупок и продлений увеличивает total_spent и пересчитывает скидку.
func (b *BalanceManager) Charge(ctx context.Context, tx uow.TX, args ChargeArgs) (*BalanceChange, error) {
	if !args.Type.IsSpending() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("%s is not a charge type", args.Type))
	}
	if err := validateAmount(args.Amount); err != nil {
		return nil, err
	}

	user, err := b.LockUser(ctx, tx, args.UserID)
	if err != nil {
		return nil, err
	}
	if user.Balance.LessThan(args.Amount) {
		return nil, fmt.Errorf("charge %s from balance %s: %w", args.Amount, user.Balance, domain.ErrInsufficientFunds)
	}

	totalSpent := user.TotalSpent.Add(args.Amount)
	return b.apply(ctx, tx, user, balanceMutation{
		balanceAfter: user.Balance.Sub(args.Amount),
		totalSpent:   totalSpent,
		discount:     b.resolver.Resolve(totalSpent).DiscountPercent,
		entry: repoargs.LedgerEntryCreate{
			Type:        args.Type,
			Amount:      args.Amount,
			Description: args.Description,
			PlacementID: args.PlacementID,
		},
	})
}

// Credit зачисляет amount на баланс. total_spent не меняется.
func (b *BalanceManager) Credit(ctx context.Context, tx uow.TX, args CreditArgs) (*BalanceChange, error) {
	switch args.Type {
	case domain.TransactionTypeDeposit, domain.TransactionTypeRefund, domain.TransactionTypeReferralWithdrawal:
	default:
		return nil, domain.NewValidationError("type", fmt.Sprintf("%s is not a credit type", args.Type))
	}
	if err := validateAmount(args.Amount); err != nil {
		return nil, err
	}

	user, err := b.LockUser(ctx, tx, args.UserID)
	if err != nil {
		return nil, err
	}

	return b.apply(ctx, tx, user, balanceMutation{
		balanceAfter: user.Balance.Add(args.Amount),
		totalSpent:   user.TotalSpent,
		discount:     b.resolver.Resolve(user.TotalSpent).DiscountPercent,
		entry: repoargs.LedgerEntryCreate{
			Type:         args.Type,
			Amount:       args.Amount,
			Description:  args.Description,
			PlacementID:  args.PlacementID,
			WithdrawalID: args.WithdrawalID,
		},
	})
}

// Adjust ручная корректировка баланса на знаковую величину delta. Баланс не может уйти в минус.
func (b *BalanceManager) Adjust(ctx context.Context, tx uow.TX, args AdjustArgs) (*BalanceChange, error) {
	if args.Delta.IsZero() {
		return nil, domain.NewValidationError("delta", "must not be zero")
	}
	if err := validateAmount(args.Delta.Abs()); err != nil {
		return nil, err
	}
	if args.Description == "" {
		return nil, domain.NewValidationError("description", "is required for adjustments")
	}

	user, err := b.LockUser(ctx, tx, args.UserID)
	if err != nil {
		return nil, err
	}
	balanceAfter := user.Balance.Add(args.Delta)
	if balanceAfter.IsNegative() {
		return nil, fmt.Errorf("adjust balance %s by %s: %w", user.Balance, args.Delta, domain.ErrInsufficientFunds)
	}

	change, err := b.apply(ctx, tx, user, balanceMutation{
		balanceAfter: balanceAfter,
		totalSpent:   user.TotalSpent,
		discount:     b.resolver.Resolve(user.TotalSpent).DiscountPercent,
		entry: repoargs.LedgerEntryCreate{
			Type:        domain.TransactionTypeAdjustment,
			Amount:      args.Delta,
			Description: args.Description,
		},
	})
	if err != nil {
		return nil, err
	}
	b.l.WithFields(logrus.Fields{
		"user_id":       args.UserID,
		"delta":         args.Delta.String(),
		"balance_after": balanceAfter.String(),
	}).Warn("manual balance adjustment")
	return change, nil
}

type balanceMutation struct {
	balanceAfter decimal.Decimal
	totalSpent   decimal.Decimal
	discount     int
	entry        repoargs.LedgerEntryCreate
}

// apply сохраняет новый баланс и запись леджера со снимком до и после.
func (b *BalanceManager) apply(
	ctx context.Context,
	tx uow.TX,
	user *domain.User,
	m balanceMutation,
) (*BalanceChange, error) {
	users, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	ledger, err := txRepo[LedgerRepository](tx, repoargs.LedgerRepoName)
	if err != nil {
		return nil, err
	}

	updated, err := users.UpdateBalance(ctx, repoargs.UpdateUserBalance{
		UserID:          user.ID,
		Balance:         m.balanceAfter,
		TotalSpent:      m.totalSpent,
		CurrentDiscount: m.discount,
	})
	if err != nil {
		return nil, fmt.Errorf("update balance of user %d: %w", user.ID, err)
	}

	m.entry.UserID = user.ID
	m.entry.BalanceBefore = user.Balance
	m.entry.BalanceAfter = m.balanceAfter
	entry, err := ledger.Create(ctx, m.entry)
	if err != nil {
		return nil, fmt.Errorf("append %s ledger entry: %w", m.entry.Type, err)
	}

	b.metrics.ObserveLedgerEntry(entry.Type, entry.Amount)
	b.l.WithFields(logrus.Fields{
		"user_id":        user.ID,
		"type":           entry.Type,
		"amount":         entry.Amount.String(),
		"balance_before": entry.BalanceBefore.String(),
		"balance_after":  entry.BalanceAfter.String(),
	}).Debug("balance changed")

	return &BalanceChange{User: updated, Entry: entry}, nil
}

// validateAmount сумма положительна и содержит не больше двух знаков после запятой.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.NewValidationError("amount", "must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return domain.NewValidationError("amount", "must have at most two decimal places")
	}
	return nil
}
