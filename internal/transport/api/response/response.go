// Package response JSON-представления результатов сервисов. Используется HTTP-обработчиками и воркером
// асинхронных заданий, чтобы результат задания совпадал с ответом синхронного запроса.
package response

import (
	"errors"
	"time"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/shopspring/decimal"
)

// ErrorCode машинно-читаемый код бизнес-ошибки.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrNotFoundOrForbidden):
		return "not_found"
	case errors.Is(err, domain.ErrExhaustedCapacity):
		return "capacity_exhausted"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrPublishFailed):
		return "publish_failed"
	case errors.Is(err, domain.ErrConcurrencyTimeout):
		return "concurrency_timeout"
	case errors.Is(err, domain.ErrAlreadyPlaced):
		return "already_placed"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	default:
		return "internal_error"
	}
}

// ErrorMessage текст ошибки, безопасный для клиента. Детали инфраструктурных ошибок не раскрываются.
func ErrorMessage(err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	if domain.IsBusinessError(err) {
		for _, target := range []error{
			domain.ErrNotFoundOrForbidden,
			domain.ErrExhaustedCapacity,
			domain.ErrInsufficientFunds,
			domain.ErrPublishFailed,
			domain.ErrConcurrencyTimeout,
			domain.ErrAlreadyPlaced,
			domain.ErrInvalidState,
		} {
			if errors.Is(err, target) {
				return target.Error()
			}
		}
	}
	return "internal server error"
}

type ItemError struct {
	Index     int    `json:"index"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func NewItemErrors(errs []service.BatchItemError) []ItemError {
	res := make([]ItemError, len(errs))
	for i, e := range errs {
		res[i] = ItemError{
			Index:     e.Index,
			Code:      ErrorCode(e.Err),
			Error:     ErrorMessage(e.Err),
			Retryable: domain.IsRetryable(e.Err),
		}
	}
	return res
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type Placement struct {
	ID                   int64   `json:"id"`
	ProjectID            int64   `json:"projectId"`
	SiteID               int64   `json:"siteId"`
	Type                 string  `json:"type"`
	Status               string  `json:"status"`
	OriginalPrice        float64 `json:"originalPrice"`
	DiscountApplied      int     `json:"discountApplied"`
	FinalPrice           float64 `json:"finalPrice"`
	PurchasedAt          string  `json:"purchasedAt"`
	ScheduledPublishDate *string `json:"scheduledPublishDate,omitempty"`
	PublishedAt          *string `json:"publishedAt,omitempty"`
	ExpiresAt            *string `json:"expiresAt,omitempty"`
	AutoRenewal          bool    `json:"autoRenewal"`
	RenewalPrice         float64 `json:"renewalPrice"`
	RenewalCount         int     `json:"renewalCount"`
	WordPressPostID      *int64  `json:"wordpressPostId,omitempty"`
	ContentIDs           []int64 `json:"contentIds"`
}

func NewPlacement(p *domain.Placement) *Placement {
	if p == nil {
		return nil
	}
	return &Placement{
		ID:                   p.ID,
		ProjectID:            p.ProjectID,
		SiteID:               p.SiteID,
		Type:                 string(p.Type),
		Status:               string(p.Status),
		OriginalPrice:        money(p.OriginalPrice),
		DiscountApplied:      p.DiscountApplied,
		FinalPrice:           money(p.FinalPrice),
		PurchasedAt:          p.PurchasedAt.Format(time.RFC3339),
		ScheduledPublishDate: timePtr(p.ScheduledPublishDate),
		PublishedAt:          timePtr(p.PublishedAt),
		ExpiresAt:            timePtr(p.ExpiresAt),
		AutoRenewal:          p.AutoRenewal,
		RenewalPrice:         money(p.RenewalPrice),
		RenewalCount:         p.RenewalCount,
		WordPressPostID:      p.WordPressPostID,
		ContentIDs:           p.ContentIDs,
	}
}

type Purchase struct {
	Placement       *Placement `json:"placement"`
	NewBalance      float64    `json:"newBalance"`
	NewDiscount     int        `json:"newDiscount"`
	PricePaid       float64    `json:"pricePaid"`
	DiscountApplied int        `json:"discountApplied"`
}

func NewPurchase(r *service.PurchaseResult) *Purchase {
	return &Purchase{
		Placement:       NewPlacement(r.Placement),
		NewBalance:      money(r.NewBalance),
		NewDiscount:     r.NewDiscount,
		PricePaid:       money(r.PricePaid),
		DiscountApplied: r.DiscountApplied,
	}
}

type BatchPurchaseItem struct {
	Index int `json:"index"`
	Purchase
}

type BatchPurchase struct {
	Successful   int                 `json:"successful"`
	Failed       int                 `json:"failed"`
	Results      []BatchPurchaseItem `json:"results"`
	Errors       []ItemError         `json:"errors"`
	FinalBalance float64             `json:"finalBalance"`
}

func NewBatchPurchase(r *service.BatchPurchaseResult) *BatchPurchase {
	res := &BatchPurchase{
		Successful:   r.Successful,
		Failed:       r.Failed,
		Results:      make([]BatchPurchaseItem, len(r.Results)),
		Errors:       NewItemErrors(r.Errors),
		FinalBalance: money(r.FinalBalance),
	}
	for i, item := range r.Results {
		res.Results[i] = BatchPurchaseItem{Index: item.Index, Purchase: *NewPurchase(item.Result)}
	}
	return res
}

type Refund struct {
	PlacementID int64   `json:"placementId"`
	Refunded    bool    `json:"refunded"`
	Amount      float64 `json:"amount"`
	NewBalance  float64 `json:"newBalance"`
}

func NewRefund(r *service.RefundResult) *Refund {
	return &Refund{
		PlacementID: r.PlacementID,
		Refunded:    r.Refunded,
		Amount:      money(r.Amount),
		NewBalance:  money(r.NewBalance),
	}
}

type BatchRefundItem struct {
	Index int `json:"index"`
	Refund
}

type BatchRefund struct {
	Successful    int               `json:"successful"`
	Failed        int               `json:"failed"`
	TotalRefunded float64           `json:"totalRefunded"`
	Results       []BatchRefundItem `json:"results"`
	Errors        []ItemError       `json:"errors"`
	FinalBalance  float64           `json:"finalBalance"`
}

func NewBatchRefund(r *service.BatchRefundResult) *BatchRefund {
	res := &BatchRefund{
		Successful:    r.Successful,
		Failed:        r.Failed,
		TotalRefunded: money(r.TotalRefunded),
		Results:       make([]BatchRefundItem, len(r.Results)),
		Errors:        NewItemErrors(r.Errors),
		FinalBalance:  money(r.FinalBalance),
	}
	for i, item := range r.Results {
		res.Results[i] = BatchRefundItem{Index: item.Index, Refund: *NewRefund(item.Result)}
	}
	return res
}

type Renew struct {
	Placement     *Placement `json:"placement"`
	NewExpiryDate string     `json:"newExpiryDate"`
	PricePaid     float64    `json:"pricePaid"`
	NewBalance    float64    `json:"newBalance"`
}

func NewRenew(r *service.RenewResult) *Renew {
	return &Renew{
		Placement:     NewPlacement(r.Placement),
		NewExpiryDate: r.NewExpiryDate.Format(time.RFC3339),
		PricePaid:     money(r.PricePaid),
		NewBalance:    money(r.NewBalance),
	}
}

type NextTier struct {
	Name      string  `json:"name"`
	Discount  int     `json:"discount"`
	Remaining float64 `json:"remaining"`
}

type Balance struct {
	Balance         float64   `json:"balance"`
	TotalSpent      float64   `json:"totalSpent"`
	ReferralBalance float64   `json:"referralBalance"`
	CurrentDiscount int       `json:"currentDiscount"`
	TierName        string    `json:"tierName"`
	NextTier        *NextTier `json:"nextTier,omitempty"`
}

func NewBalance(info *service.BalanceInfo) *Balance {
	res := &Balance{
		Balance:         money(info.Balance),
		TotalSpent:      money(info.TotalSpent),
		ReferralBalance: money(info.ReferralBalance),
		CurrentDiscount: info.DiscountPercent,
		TierName:        info.TierName,
	}
	if info.NextTier != nil {
		res.NextTier = &NextTier{
			Name:      info.NextTier.Name,
			Discount:  info.NextTier.Discount,
			Remaining: money(info.NextTier.Remaining),
		}
	}
	return res
}

type Tier struct {
	Name     string   `json:"name"`
	Min      float64  `json:"min"`
	Max      *float64 `json:"max"`
	Discount int      `json:"discount"`
}

func NewTiers(tiers []discount.Tier) []Tier {
	res := make([]Tier, len(tiers))
	for i, t := range tiers {
		res[i] = Tier{Name: t.Name, Min: money(t.Min), Discount: t.Discount}
		if t.Max != nil {
			m := money(*t.Max)
			res[i].Max = &m
		}
	}
	return res
}

type Transaction struct {
	ID            int64   `json:"id"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	BalanceBefore float64 `json:"balanceBefore"`
	BalanceAfter  float64 `json:"balanceAfter"`
	Description   string  `json:"description"`
	PlacementID   *int64  `json:"placementId,omitempty"`
	WithdrawalID  *int64  `json:"withdrawalId,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

func NewTransaction(t *domain.Transaction) Transaction {
	return Transaction{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        money(t.Amount),
		BalanceBefore: money(t.BalanceBefore),
		BalanceAfter:  money(t.BalanceAfter),
		Description:   t.Description,
		PlacementID:   t.PlacementID,
		WithdrawalID:  t.WithdrawalID,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

func NewTransactions(entries []domain.Transaction) []Transaction {
	res := make([]Transaction, len(entries))
	for i := range entries {
		res[i] = NewTransaction(&entries[i])
	}
	return res
}

type BalanceChange struct {
	Balance     float64     `json:"balance"`
	Transaction Transaction `json:"transaction"`
}

func NewBalanceChange(c *service.BalanceChange) *BalanceChange {
	return &BalanceChange{Balance: money(c.User.Balance), Transaction: NewTransaction(c.Entry)}
}

type Withdrawal struct {
	ID            int64   `json:"id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	WalletAddress string  `json:"walletAddress,omitempty"`
	ProcessedBy   *int64  `json:"processedBy,omitempty"`
	ProcessedAt   *string `json:"processedAt,omitempty"`
	Comment       string  `json:"comment,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

func NewWithdrawal(w *domain.ReferralWithdrawal) *Withdrawal {
	return &Withdrawal{
		ID:            w.ID,
		Amount:        money(w.Amount),
		Status:        string(w.Status),
		WalletAddress: w.WalletAddress,
		ProcessedBy:   w.ProcessedBy,
		ProcessedAt:   timePtr(w.ProcessedAt),
		Comment:       w.Comment,
		CreatedAt:     w.CreatedAt.Format(time.RFC3339),
	}
}

func NewWithdrawals(ws []domain.ReferralWithdrawal) []*Withdrawal {
	res := make([]*Withdrawal, len(ws))
	for i := range ws {
		res[i] = NewWithdrawal(&ws[i])
	}
	return res
}

type ReferralWithdraw struct {
	Withdrawal         *Withdrawal `json:"withdrawal"`
	WithdrawnAmount    float64     `json:"withdrawnAmount"`
	NewReferralBalance float64     `json:"newReferralBalance"`
	NewMainBalance     float64     `json:"newMainBalance"`
}

func NewReferralWithdraw(r *service.ReferralWithdrawResult) *ReferralWithdraw {
	return &ReferralWithdraw{
		Withdrawal:         NewWithdrawal(r.Withdrawal),
		WithdrawnAmount:    money(r.WithdrawnAmount),
		NewReferralBalance: money(r.NewReferralBalance),
		NewMainBalance:     money(r.NewMainBalance),
	}
}
