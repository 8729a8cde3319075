package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MaxBatchPurchase = 1000
	MaxBatchDelete   = 100

	defaultTransactionsLimit uint = 50
	maxTransactionsLimit     uint = 500
)

var maxDeposit = decimal.NewFromInt(10000)

type BillingConfig struct {
	Pricing        Pricing
	RenewalPeriod  time.Duration
	CleanupTimeout time.Duration
}

// BillingService оркестратор денежных операций. Каждая операция выполняется в одной транзакции, первой
// блокируется строка пользователя. Любая ошибка после блокировки откатывает все изменения.
type BillingService struct {
	uow        uow.UOW
	balances   *BalanceManager
	placements *PlacementManager
	resolver   *discount.Resolver
	users      UserRepository
	ledger     LedgerRepository
	placeRepo  PlacementRepository
	conf       BillingConfig
	ops        operations
	now        func() time.Time
	l          *logrus.Entry
}

func NewBillingService(
	u uow.UOW,
	balances *BalanceManager,
	placements *PlacementManager,
	resolver *discount.Resolver,
	conf BillingConfig,
	l *logrus.Logger,
) (*BillingService, error) {
	users, err := connRepo[UserRepository](u, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}
	ledger, err := connRepo[LedgerRepository](u, repoargs.LedgerRepoName)
	if err != nil {
		return nil, err
	}
	placeRepo, err := connRepo[PlacementRepository](u, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}
	return &BillingService{
		uow:        u,
		balances:   balances,
		placements: placements,
		resolver:   resolver,
		users:      users,
		ledger:     ledger,
		placeRepo:  placeRepo,
		conf:       conf,
		ops:        newOperations("billing"),
		now:        time.Now,
		l:          l.WithField("component", "billing_service"),
	}, nil
}

func (s *BillingService) SetMetrics(m MetricsRecorder) *BillingService {
	s.ops.setMetrics(m)
	return s
}

type PurchaseResult struct {
	Placement       *domain.Placement
	NewBalance      decimal.Decimal
	NewDiscount     int
	PricePaid       decimal.Decimal
	DiscountApplied int
}

// Purchase покупка размещения. Порядок внутри транзакции: блокировка пользователя, расчет цены по сумме
// покупок до этой покупки, создание размещения со слотами, списание, публикация. Ошибка публикации
// откатывает списание и размещение.
func (s *BillingService) Purchase(ctx context.Context, args PurchaseArgs) (_ *PurchaseResult, err error) {
	ctx, done := s.ops.track(ctx, "purchase",
		attribute.Int64("user_id", args.UserID),
		attribute.Int64("site_id", args.SiteID),
		attribute.String("type", string(args.Type)),
	)
	defer done(&err)

	target, err := s.placements.ValidatePurchase(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("validate purchase: %w", err)
	}

	var result *PurchaseResult
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, lockErr := s.balances.LockUser(ctx, tx, args.UserID)
		if lockErr != nil {
			return lockErr
		}

		quote := s.conf.Pricing.Quote(s.resolver, user.TotalSpent, args.Type)
		if user.Balance.LessThan(quote.FinalPrice) {
			return fmt.Errorf("price %s, balance %s: %w", quote.FinalPrice, user.Balance, domain.ErrInsufficientFunds)
		}

		placement, createErr := s.placements.Create(ctx, tx, CreatePlacementArgs{
			Purchase: args,
			Target:   target,
			Quote:    quote,
		})
		if createErr != nil {
			return createErr
		}

		newBalance, newDiscount := user.Balance, user.CurrentDiscount
		if quote.FinalPrice.IsPositive() {
			change, chargeErr := s.balances.Charge(ctx, tx, ChargeArgs{
				UserID:      user.ID,
				Amount:      quote.FinalPrice,
				Type:        domain.TransactionTypePurchase,
				Description: purchaseDescription(args.Type, target.Site),
				PlacementID: &placement.ID,
			})
			if chargeErr != nil {
				return chargeErr
			}
			newBalance, newDiscount = change.User.Balance, change.User.CurrentDiscount
		}

		published, pubErr := s.placements.Publish(ctx, tx, placement, target.Site, target.Content)
		if pubErr != nil {
			return pubErr
		}

		result = &PurchaseResult{
			Placement:       published,
			NewBalance:      newBalance,
			NewDiscount:     newDiscount,
			PricePaid:       quote.FinalPrice,
			DiscountApplied: quote.DiscountPercent,
		}
		return nil
	})
	if err != nil {
		s.l.WithError(err).WithField("user_id", args.UserID).Warn("purchase rolled back")
		return nil, fmt.Errorf("purchase: %w", err)
	}

	s.l.WithFields(logrus.Fields{
		"user_id":      args.UserID,
		"placement_id": result.Placement.ID,
		"price":        result.PricePaid.String(),
		"balance":      result.NewBalance.String(),
		"status":       result.Placement.Status,
	}).Info("placement purchased")
	return result, nil
}

func purchaseDescription(t domain.PlacementType, site *domain.Site) string {
	return fmt.Sprintf("Purchase of %s placement on %s", t, site.SiteURL)
}

// PurchaseItem элемент пакетной покупки.
type PurchaseItem struct {
	ProjectID     int64                `json:"projectId"`
	SiteID        int64                `json:"siteId"`
	Type          domain.PlacementType `json:"type"`
	ContentIDs    []int64              `json:"contentIds"`
	ScheduledDate *time.Time           `json:"scheduledDate,omitempty"`
	AutoRenewal   bool                 `json:"autoRenewal"`
}

func (i PurchaseItem) args(userID int64) PurchaseArgs {
	return PurchaseArgs{
		UserID:        userID,
		ProjectID:     i.ProjectID,
		SiteID:        i.SiteID,
		Type:          i.Type,
		ContentIDs:    i.ContentIDs,
		ScheduledDate: i.ScheduledDate,
		AutoRenewal:   i.AutoRenewal,
	}
}

// BatchItemError ошибка отдельного элемента пакета.
type BatchItemError struct {
	Index int
	Err   error
}

type BatchPurchaseItemResult struct {
	Index  int
	Result *PurchaseResult
}

type BatchPurchaseResult struct {
	Successful   int
	Failed       int
	Results      []BatchPurchaseItemResult
	Errors       []BatchItemError
	FinalBalance decimal.Decimal
}

// BatchPurchase выполняет каждую покупку в собственной транзакции. Бизнес-ошибки элемента записываются
// в результат и не прерывают пакет. Инфраструктурная ошибка прерывает обработку: возвращается частичный
// результат вместе с ошибкой.
func (s *BillingService) BatchPurchase(
	ctx context.Context,
	userID int64,
	items []PurchaseItem,
) (_ *BatchPurchaseResult, err error) {
	ctx, done := s.ops.track(ctx, "batch_purchase",
		attribute.Int64("user_id", userID),
		attribute.Int("items", len(items)),
	)
	defer done(&err)

	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "must not be empty")
	}
	if len(items) > MaxBatchPurchase {
		return nil, domain.NewValidationError("items", fmt.Sprintf("at most %d items allowed", MaxBatchPurchase))
	}

	result := &BatchPurchaseResult{}
	for i, item := range items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.finishBatchPurchase(ctx, userID, result), fmt.Errorf("batch purchase interrupted: %w", ctxErr)
		}
		res, itemErr := s.Purchase(ctx, item.args(userID))
		if itemErr != nil {
			if !domain.IsBusinessError(itemErr) {
				return s.finishBatchPurchase(ctx, userID, result), fmt.Errorf("batch purchase item %d: %w", i, itemErr)
			}
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{Index: i, Err: itemErr})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, BatchPurchaseItemResult{Index: i, Result: res})
	}
	return s.finishBatchPurchase(ctx, userID, result), nil
}

func (s *BillingService) finishBatchPurchase(
	ctx context.Context,
	userID int64,
	result *BatchPurchaseResult,
) *BatchPurchaseResult {
	result.FinalBalance = s.currentBalance(ctx, userID)
	s.l.WithFields(logrus.Fields{
		"user_id":    userID,
		"successful": result.Successful,
		"failed":     result.Failed,
	}).Info("batch purchase finished")
	return result
}

// currentBalance читает баланс после пакетной операции. Ошибка чтения не отменяет уже закоммиченные элементы,
// поэтому только логируется.
func (s *BillingService) currentBalance(ctx context.Context, userID int64) decimal.Decimal {
	user, err := s.users.FindByID(context.WithoutCancel(ctx), userID)
	if err != nil {
		s.l.WithError(err).WithField("user_id", userID).Error("read final balance")
		return decimal.Zero
	}
	return user.Balance
}

type RenewResult struct {
	Placement     *domain.Placement
	NewExpiryDate time.Time
	PricePaid     decimal.Decimal
	NewBalance    decimal.Decimal
}

// Renew продлевает ссылку владельцем размещения.
func (s *BillingService) Renew(ctx context.Context, placementID, userID int64) (_ *RenewResult, err error) {
	ctx, done := s.ops.track(ctx, "renew",
		attribute.Int64("user_id", userID),
		attribute.Int64("placement_id", placementID),
	)
	defer done(&err)

	var result *RenewResult
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, lockErr := s.balances.LockUser(ctx, tx, userID)
		if lockErr != nil {
			return lockErr
		}
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}
		if placement.UserID != userID {
			return fmt.Errorf("placement %d: %w", placementID, domain.ErrNotFoundOrForbidden)
		}
		res, renewErr := s.renew(ctx, tx, user, placement, domain.TransactionTypeRenewal)
		if renewErr != nil {
			return renewErr
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("renew placement %d: %w", placementID, err)
	}

	s.l.WithFields(logrus.Fields{
		"user_id":      userID,
		"placement_id": placementID,
		"price":        result.PricePaid.String(),
		"expires_at":   result.NewExpiryDate,
	}).Info("placement renewed")
	return result, nil
}

// AutoRenew продление ссылки фоновым процессом. Если средств не хватает, размещение истекает, а вызывающему
// возвращается ошибка ErrInsufficientFunds.
func (s *BillingService) AutoRenew(ctx context.Context, placementID int64) (_ *RenewResult, err error) {
	ctx, done := s.ops.track(ctx, "auto_renew", attribute.Int64("placement_id", placementID))
	defer done(&err)

	existing, err := s.placeRepo.FindByID(ctx, placementID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "placement %d", placementID)
	}

	var result *RenewResult
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		user, lockErr := s.balances.LockUser(ctx, tx, existing.UserID)
		if lockErr != nil {
			return lockErr
		}
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}
		if !placement.AutoRenewal {
			return fmt.Errorf("placement %d has auto renewal disabled: %w", placementID, domain.ErrInvalidState)
		}
		res, renewErr := s.renew(ctx, tx, user, placement, domain.TransactionTypeAutoRenewal)
		if renewErr != nil {
			return renewErr
		}
		result = res
		return nil
	})
	if errors.Is(err, domain.ErrInsufficientFunds) {
		s.l.WithField("placement_id", placementID).Warn("auto renewal declined, not enough funds")
		if _, expErr := s.ExpirePlacement(ctx, placementID); expErr != nil {
			return nil, errors.Join(fmt.Errorf("auto renew placement %d: %w", placementID, err), expErr)
		}
		return nil, fmt.Errorf("auto renew placement %d: %w", placementID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("auto renew placement %d: %w", placementID, err)
	}

	s.l.WithFields(logrus.Fields{
		"user_id":      existing.UserID,
		"placement_id": placementID,
		"price":        result.PricePaid.String(),
	}).Info("placement auto renewed")
	return result, nil
}

func (s *BillingService) renew(
	ctx context.Context,
	tx uow.TX,
	user *domain.User,
	placement *domain.Placement,
	txType domain.TransactionType,
) (*RenewResult, error) {
	if placement.Type != domain.PlacementTypeLink {
		return nil, domain.NewValidationError("placementId", "only link placements can be renewed")
	}
	if placement.Status != domain.PlacementStatusPlaced && placement.Status != domain.PlacementStatusExpired {
		return nil, fmt.Errorf("renew %s placement %d: %w", placement.Status, placement.ID, domain.ErrInvalidState)
	}

	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}

	price := s.conf.Pricing.RenewalPrice(s.resolver.Resolve(user.TotalSpent).DiscountPercent)
	if placement.Status == domain.PlacementStatusExpired {
		if err := s.placements.Reserve(ctx, tx, placement); err != nil {
			return nil, err
		}
	}

	change, err := s.balances.Charge(ctx, tx, ChargeArgs{
		UserID:      user.ID,
		Amount:      price,
		Type:        txType,
		Description: fmt.Sprintf("Renewal of link placement #%d", placement.ID),
		PlacementID: &placement.ID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	base := now
	if placement.ExpiresAt != nil && placement.ExpiresAt.After(now) {
		base = *placement.ExpiresAt
	}
	renewed, err := placements.Renew(ctx, repoargs.PlacementRenew{
		ID:           placement.ID,
		ExpiresAt:    base.Add(s.conf.RenewalPeriod),
		RenewalPrice: price,
		RenewedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("update renewed placement: %w", err)
	}

	return &RenewResult{
		Placement:     renewed,
		NewExpiryDate: base.Add(s.conf.RenewalPeriod),
		PricePaid:     price,
		NewBalance:    change.User.Balance,
	}, nil
}

// SetAutoRenewal включает или выключает автопродление ссылки.
func (s *BillingService) SetAutoRenewal(
	ctx context.Context,
	placementID, userID int64,
	enabled bool,
) (_ *domain.Placement, err error) {
	ctx, done := s.ops.track(ctx, "set_auto_renewal", attribute.Int64("placement_id", placementID))
	defer done(&err)

	var result *domain.Placement
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}
		if placement.UserID != userID {
			return fmt.Errorf("placement %d: %w", placementID, domain.ErrNotFoundOrForbidden)
		}
		if placement.Type != domain.PlacementTypeLink {
			return domain.NewValidationError("placementId", "auto renewal is available for links only")
		}
		placements, repoErr := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
		if repoErr != nil {
			return repoErr
		}
		if setErr := placements.SetAutoRenewal(ctx, placementID, enabled); setErr != nil {
			return fmt.Errorf("set auto renewal: %w", setErr)
		}
		placement.AutoRenewal = enabled
		result = placement
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set auto renewal of placement %d: %w", placementID, err)
	}
	return result, nil
}

type RefundResult struct {
	PlacementID int64
	Refunded    bool
	Amount      decimal.Decimal
	NewBalance  decimal.Decimal
}

// DeleteAndRefund удаляет размещение владельцем или администратором и возвращает владельцу final_price.
// Удаление статьи на сайте выполняется после коммита и на результат не влияет.
func (s *BillingService) DeleteAndRefund(
	ctx context.Context,
	placementID, userID int64,
	role domain.ActorRole,
) (_ *RefundResult, err error) {
	ctx, done := s.ops.track(ctx, "delete_and_refund",
		attribute.Int64("user_id", userID),
		attribute.Int64("placement_id", placementID),
		attribute.String("role", string(role)),
	)
	defer done(&err)

	existing, err := s.placeRepo.FindByID(ctx, placementID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "placement %d", placementID)
	}
	if role != domain.RoleAdmin && existing.UserID != userID {
		return nil, fmt.Errorf("placement %d: %w", placementID, domain.ErrNotFoundOrForbidden)
	}

	var (
		result  *RefundResult
		removed *domain.Placement
	)
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		owner, lockErr := s.balances.LockUser(ctx, tx, existing.UserID)
		if lockErr != nil {
			return lockErr
		}
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}

		res := &RefundResult{PlacementID: placementID, Amount: decimal.Zero, NewBalance: owner.Balance}
		if placement.Refundable() {
			change, creditErr := s.balances.Credit(ctx, tx, CreditArgs{
				UserID:      owner.ID,
				Amount:      placement.FinalPrice,
				Type:        domain.TransactionTypeRefund,
				Description: fmt.Sprintf("Refund for deleted %s placement #%d", placement.Type, placement.ID),
				PlacementID: &placement.ID,
			})
			if creditErr != nil {
				return creditErr
			}
			res.Refunded = true
			res.Amount = placement.FinalPrice
			res.NewBalance = change.User.Balance
		}

		if rmErr := s.placements.Remove(ctx, tx, placement); rmErr != nil {
			return rmErr
		}
		result, removed = res, placement
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete placement %d: %w", placementID, err)
	}

	s.cleanupRemote(ctx, removed)
	s.l.WithFields(logrus.Fields{
		"actor_id":     userID,
		"owner_id":     existing.UserID,
		"placement_id": placementID,
		"refund":       result.Amount.String(),
	}).Info("placement deleted")
	return result, nil
}

func (s *BillingService) cleanupRemote(ctx context.Context, placement *domain.Placement) {
	if placement.WordPressPostID == nil {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	if s.conf.CleanupTimeout > 0 {
		var cancel context.CancelFunc
		cleanupCtx, cancel = context.WithTimeout(cleanupCtx, s.conf.CleanupTimeout)
		defer cancel()
	}
	site, err := s.placements.SiteFor(cleanupCtx, placement)
	if err != nil {
		s.l.WithError(err).WithField("placement_id", placement.ID).Warn("remote post cleanup skipped")
		return
	}
	s.placements.CleanupRemote(cleanupCtx, placement, site)
}

type BatchRefundItemResult struct {
	Index  int
	Result *RefundResult
}

type BatchRefundResult struct {
	Successful    int
	Failed        int
	TotalRefunded decimal.Decimal
	Results       []BatchRefundItemResult
	Errors        []BatchItemError
	FinalBalance  decimal.Decimal
}

// BatchDeleteAndRefund удаляет размещения по одному, каждое в своей транзакции.
func (s *BillingService) BatchDeleteAndRefund(
	ctx context.Context,
	userID int64,
	role domain.ActorRole,
	placementIDs []int64,
) (_ *BatchRefundResult, err error) {
	ctx, done := s.ops.track(ctx, "batch_delete_and_refund",
		attribute.Int64("user_id", userID),
		attribute.Int("items", len(placementIDs)),
	)
	defer done(&err)

	if len(placementIDs) == 0 {
		return nil, domain.NewValidationError("placementIds", "must not be empty")
	}
	if len(placementIDs) > MaxBatchDelete {
		return nil, domain.NewValidationError("placementIds", fmt.Sprintf("at most %d items allowed", MaxBatchDelete))
	}

	result := &BatchRefundResult{TotalRefunded: decimal.Zero}
	finish := func() *BatchRefundResult {
		result.FinalBalance = s.currentBalance(ctx, userID)
		return result
	}
	for i, id := range placementIDs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return finish(), fmt.Errorf("batch delete interrupted: %w", ctxErr)
		}
		res, itemErr := s.DeleteAndRefund(ctx, id, userID, role)
		if itemErr != nil {
			if !domain.IsBusinessError(itemErr) {
				return finish(), fmt.Errorf("batch delete item %d: %w", i, itemErr)
			}
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{Index: i, Err: itemErr})
			continue
		}
		result.Successful++
		result.TotalRefunded = result.TotalRefunded.Add(res.Amount)
		result.Results = append(result.Results, BatchRefundItemResult{Index: i, Result: res})
	}
	return finish(), nil
}

// Deposit пополнение баланса. Сумма в пределах (0, 10000].
func (s *BillingService) Deposit(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
) (_ *BalanceChange, err error) {
	ctx, done := s.ops.track(ctx, "deposit", attribute.Int64("user_id", userID))
	defer done(&err)

	if amount.GreaterThan(maxDeposit) {
		return nil, domain.NewValidationError("amount", fmt.Sprintf("must not exceed %s", maxDeposit))
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Balance deposit"
	}

	var result *BalanceChange
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		if _, lockErr := s.balances.LockUser(ctx, tx, userID); lockErr != nil {
			return lockErr
		}
		change, creditErr := s.balances.Credit(ctx, tx, CreditArgs{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionTypeDeposit,
			Description: description,
		})
		if creditErr != nil {
			return creditErr
		}
		result = change
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	s.l.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount.String(),
		"balance": result.User.Balance.String(),
	}).Info("balance deposited")
	return result, nil
}

// AdjustBalance ручная корректировка баланса администратором.
func (s *BillingService) AdjustBalance(
	ctx context.Context,
	userID int64,
	delta decimal.Decimal,
	description string,
) (_ *BalanceChange, err error) {
	ctx, done := s.ops.track(ctx, "adjust", attribute.Int64("user_id", userID))
	defer done(&err)

	var result *BalanceChange
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		if _, lockErr := s.balances.LockUser(ctx, tx, userID); lockErr != nil {
			return lockErr
		}
		change, adjErr := s.balances.Adjust(ctx, tx, AdjustArgs{UserID: userID, Delta: delta, Description: description})
		if adjErr != nil {
			return adjErr
		}
		result = change
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}
	return result, nil
}

type NextTierInfo struct {
	Name      string
	Discount  int
	Remaining decimal.Decimal
}

type BalanceInfo struct {
	Balance         decimal.Decimal
	TotalSpent      decimal.Decimal
	ReferralBalance decimal.Decimal
	DiscountPercent int
	TierName        string
	NextTier        *NextTierInfo
}

func (s *BillingService) GetBalance(ctx context.Context, userID int64) (*BalanceInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "user %d", userID)
	}
	tier := s.resolver.Resolve(user.TotalSpent)
	info := &BalanceInfo{
		Balance:         user.Balance,
		TotalSpent:      user.TotalSpent,
		ReferralBalance: user.ReferralBalance,
		DiscountPercent: tier.DiscountPercent,
		TierName:        tier.TierName,
	}
	if next, remaining, ok := s.resolver.NextTier(user.TotalSpent); ok {
		info.NextTier = &NextTierInfo{Name: next.Name, Discount: next.Discount, Remaining: remaining}
	}
	return info, nil
}

// Tiers уровни скидок для публичного отображения.
func (s *BillingService) Tiers() []discount.Tier {
	return s.resolver.Tiers()
}

func (s *BillingService) ListTransactions(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]domain.Transaction, error) {
	if limit == 0 {
		limit = defaultTransactionsLimit
	}
	limit = min(limit, maxTransactionsLimit)
	entries, err := s.ledger.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return entries, nil
}

func (s *BillingService) lockPlacement(ctx context.Context, tx uow.TX, placementID int64) (*domain.Placement, error) {
	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}
	placement, err := placements.LockByID(ctx, placementID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "lock placement %d", placementID)
	}
	return placement, nil
}
