package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// trc20Address адрес кошелька сети TRON в base58.
var trc20Address = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

type ReferralConfig struct {
	MinWithdrawal decimal.Decimal
}

func DefaultReferralConfig() ReferralConfig {
	return ReferralConfig{MinWithdrawal: decimal.NewFromInt(200)}
}

// ReferralService вывод реферального баланса: перевод на основной баланс или заявка на вывод в кошелек.
type ReferralService struct {
	uow         uow.UOW
	balances    *BalanceManager
	withdrawals WithdrawalRepository
	conf        ReferralConfig
	ops         operations
	l           *logrus.Entry
}

func NewReferralService(
	u uow.UOW,
	balances *BalanceManager,
	conf ReferralConfig,
	l *logrus.Logger,
) (*ReferralService, error) {
	withdrawals, err := connRepo[WithdrawalRepository](u, repoargs.WithdrawalRepoName)
	if err != nil {
		return nil, err
	}
	return &ReferralService{
		uow:         u,
		balances:    balances,
		withdrawals: withdrawals,
		conf:        conf,
		ops:         newOperations("referral"),
		l:           l.WithField("component", "referral_service"),
	}, nil
}

func (r *ReferralService) SetMetrics(m MetricsRecorder) *ReferralService {
	r.ops.setMetrics(m)
	return r
}

type ReferralWithdrawResult struct {
	Withdrawal         *domain.ReferralWithdrawal
	WithdrawnAmount    decimal.Decimal
	NewReferralBalance decimal.Decimal
	NewMainBalance     decimal.Decimal
}

// WithdrawToBalance переводит реферальные средства на основной баланс. Если amount не указан, переводится
// весь реферальный баланс.
func (r *ReferralService) WithdrawToBalance(
	ctx context.Context,
	userID int64,
	amount *decimal.Decimal,
) (_ *ReferralWithdrawResult, err error) {
	ctx, done := r.ops.track(ctx, "referral_withdraw", attribute.Int64("user_id", userID))
	defer done(&err)

	if amount != nil {
		if err := validateAmount(*amount); err != nil {
			return nil, err
		}
	}

	var result *ReferralWithdrawResult
	err = r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, err := r.balances.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		withdrawAmount, err := r.checkAvailable(user, amount)
		if err != nil {
			return err
		}

		updated, err := r.debitReferral(ctx, tx, user, withdrawAmount)
		if err != nil {
			return err
		}
		withdrawals, err := txRepo[WithdrawalRepository](tx, repoargs.WithdrawalRepoName)
		if err != nil {
			return err
		}
		withdrawal, err := withdrawals.Create(ctx, repoargs.WithdrawalCreate{
			UserID: userID,
			Amount: withdrawAmount,
			Status: domain.WithdrawalStatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("create referral withdrawal: %w", err)
		}
		change, err := r.balances.Credit(ctx, tx, CreditArgs{
			UserID:       userID,
			Amount:       withdrawAmount,
			Type:         domain.TransactionTypeReferralWithdrawal,
			Description:  "Referral earnings transferred to balance",
			WithdrawalID: &withdrawal.ID,
		})
		if err != nil {
			return err
		}

		result = &ReferralWithdrawResult{
			Withdrawal:         withdrawal,
			WithdrawnAmount:    withdrawAmount,
			NewReferralBalance: updated.ReferralBalance,
			NewMainBalance:     change.User.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("referral withdrawal: %w", err)
	}

	r.l.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  result.WithdrawnAmount.String(),
	}).Info("referral balance transferred")
	return result, nil
}

// RequestWalletWithdrawal создает заявку на вывод в TRC20-кошелек. Реферальный баланс списывается только
// при одобрении заявки.
func (r *ReferralService) RequestWalletWithdrawal(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	walletAddress string,
) (_ *domain.ReferralWithdrawal, err error) {
	ctx, done := r.ops.track(ctx, "wallet_withdrawal_request", attribute.Int64("user_id", userID))
	defer done(&err)

	if !trc20Address.MatchString(walletAddress) {
		return nil, domain.NewValidationError("walletAddress", "must be a valid TRC20 address")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var result *domain.ReferralWithdrawal
	err = r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, err := r.balances.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if _, err := r.checkAvailable(user, &amount); err != nil {
			return err
		}
		withdrawals, err := txRepo[WithdrawalRepository](tx, repoargs.WithdrawalRepoName)
		if err != nil {
			return err
		}
		withdrawal, err := withdrawals.Create(ctx, repoargs.WithdrawalCreate{
			UserID:        userID,
			Amount:        amount,
			Status:        domain.WithdrawalStatusPending,
			WalletAddress: walletAddress,
		})
		if err != nil {
			return fmt.Errorf("create wallet withdrawal: %w", err)
		}
		result = withdrawal
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wallet withdrawal request: %w", err)
	}

	r.l.WithFields(logrus.Fields{
		"user_id":       userID,
		"withdrawal_id": result.ID,
		"amount":        amount.String(),
	}).Info("wallet withdrawal requested")
	return result, nil
}

// ApproveWithdrawal одобряет заявку на вывод в кошелек: списывает реферальный баланс и пишет запись леджера.
// Основной баланс не меняется.
func (r *ReferralService) ApproveWithdrawal(
	ctx context.Context,
	withdrawalID, adminID int64,
) (_ *domain.ReferralWithdrawal, err error) {
	ctx, done := r.ops.track(ctx, "withdrawal_approve",
		attribute.Int64("withdrawal_id", withdrawalID),
		attribute.Int64("admin_id", adminID),
	)
	defer done(&err)

	pending, err := r.findPending(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	var result *domain.ReferralWithdrawal
	err = r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, err := r.balances.LockUser(ctx, tx, pending.UserID)
		if err != nil {
			return err
		}
		withdrawals, err := txRepo[WithdrawalRepository](tx, repoargs.WithdrawalRepoName)
		if err != nil {
			return err
		}
		withdrawal, err := r.lockPending(ctx, withdrawals, withdrawalID)
		if err != nil {
			return err
		}
		if _, err := r.checkAvailable(user, &withdrawal.Amount); err != nil {
			return err
		}
		if _, err := r.debitReferral(ctx, tx, user, withdrawal.Amount); err != nil {
			return err
		}

		ledger, err := txRepo[LedgerRepository](tx, repoargs.LedgerRepoName)
		if err != nil {
			return err
		}
		if _, err := ledger.Create(ctx, repoargs.LedgerEntryCreate{
			UserID:        user.ID,
			Type:          domain.TransactionTypeReferralWithdrawal,
			Amount:        withdrawal.Amount,
			BalanceBefore: user.Balance,
			BalanceAfter:  user.Balance,
			Description:   fmt.Sprintf("Referral payout to wallet %s", withdrawal.WalletAddress),
			WithdrawalID:  &withdrawal.ID,
		}); err != nil {
			return fmt.Errorf("append payout ledger entry: %w", err)
		}

		processed, err := withdrawals.Process(ctx, repoargs.WithdrawalProcess{
			ID:          withdrawal.ID,
			Status:      domain.WithdrawalStatusApproved,
			ProcessedBy: adminID,
		})
		if err != nil {
			return fmt.Errorf("approve withdrawal: %w", err)
		}
		result = processed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("approve withdrawal %d: %w", withdrawalID, err)
	}

	r.l.WithFields(logrus.Fields{
		"withdrawal_id": withdrawalID,
		"admin_id":      adminID,
		"amount":        result.Amount.String(),
	}).Info("wallet withdrawal approved")
	return result, nil
}

// RejectWithdrawal отклоняет заявку. Балансы и леджер не меняются.
func (r *ReferralService) RejectWithdrawal(
	ctx context.Context,
	withdrawalID, adminID int64,
	reason string,
) (_ *domain.ReferralWithdrawal, err error) {
	ctx, done := r.ops.track(ctx, "withdrawal_reject",
		attribute.Int64("withdrawal_id", withdrawalID),
		attribute.Int64("admin_id", adminID),
	)
	defer done(&err)

	var result *domain.ReferralWithdrawal
	err = r.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		withdrawals, err := txRepo[WithdrawalRepository](tx, repoargs.WithdrawalRepoName)
		if err != nil {
			return err
		}
		withdrawal, err := r.lockPending(ctx, withdrawals, withdrawalID)
		if err != nil {
			return err
		}
		processed, err := withdrawals.Process(ctx, repoargs.WithdrawalProcess{
			ID:          withdrawal.ID,
			Status:      domain.WithdrawalStatusRejected,
			ProcessedBy: adminID,
			Comment:     reason,
		})
		if err != nil {
			return fmt.Errorf("reject withdrawal: %w", err)
		}
		result = processed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reject withdrawal %d: %w", withdrawalID, err)
	}

	r.l.WithFields(logrus.Fields{"withdrawal_id": withdrawalID, "admin_id": adminID}).Info("wallet withdrawal rejected")
	return result, nil
}

func (r *ReferralService) ListWithdrawals(ctx context.Context, userID int64) ([]domain.ReferralWithdrawal, error) {
	withdrawals, err := r.withdrawals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list referral withdrawals: %w", err)
	}
	return withdrawals, nil
}

// checkAvailable проверяет минимальный порог и достаточность реферального баланса. Возвращает сумму к выводу.
func (r *ReferralService) checkAvailable(user *domain.User, amount *decimal.Decimal) (decimal.Decimal, error) {
	if user.ReferralBalance.LessThan(r.conf.MinWithdrawal) {
		return decimal.Zero, fmt.Errorf("referral balance %s is below minimum %s: %w",
			user.ReferralBalance, r.conf.MinWithdrawal, domain.ErrInsufficientFunds)
	}
	if amount == nil {
		return user.ReferralBalance, nil
	}
	if amount.GreaterThan(user.ReferralBalance) {
		return decimal.Zero, fmt.Errorf("withdraw %s from referral balance %s: %w",
			*amount, user.ReferralBalance, domain.ErrInsufficientFunds)
	}
	return *amount, nil
}

func (r *ReferralService) debitReferral(
	ctx context.Context,
	tx uow.TX,
	user *domain.User,
	amount decimal.Decimal,
) (*domain.User, error) {
	users, err := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	updated, err := users.UpdateReferralBalance(ctx, repoargs.UpdateReferralBalance{
		UserID:          user.ID,
		ReferralBalance: user.ReferralBalance.Sub(amount),
	})
	if err != nil {
		return nil, fmt.Errorf("debit referral balance: %w", err)
	}
	return updated, nil
}

func (r *ReferralService) findPending(ctx context.Context, withdrawalID int64) (*domain.ReferralWithdrawal, error) {
	withdrawal, err := r.withdrawals.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "withdrawal %d", withdrawalID)
	}
	if withdrawal.Status != domain.WithdrawalStatusPending {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, domain.ErrInvalidState)
	}
	return withdrawal, nil
}

func (r *ReferralService) lockPending(
	ctx context.Context,
	withdrawals WithdrawalRepository,
	withdrawalID int64,
) (*domain.ReferralWithdrawal, error) {
	withdrawal, err := withdrawals.LockByID(ctx, withdrawalID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "withdrawal %d", withdrawalID)
	}
	if withdrawal.Status != domain.WithdrawalStatusPending {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, domain.ErrInvalidState)
	}
	return withdrawal, nil
}
