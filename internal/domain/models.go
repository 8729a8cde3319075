package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Username        string
	Balance         decimal.Decimal
	TotalSpent      decimal.Decimal
	CurrentDiscount int
	ReferralBalance decimal.Decimal
}

// Transaction запись леджера. Создается единожды вместе с изменением баланса, которое она документирует,
// и никогда не обновляется.
type Transaction struct {
	ID            int64
	CreatedAt     time.Time
	UserID        int64
	Type          TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	PlacementID   *int64
	WithdrawalID  *int64
}

type Project struct {
	ID     int64
	UserID int64
	Name   string
}

type Site struct {
	ID           int64
	UserID       int64
	SiteURL      string
	SiteName     string
	APIKey       string
	SiteType     SiteType
	MaxLinks     int
	UsedLinks    int
	MaxArticles  int
	UsedArticles int
}

// IsWordPress сайт с установленным плагином, которому статьи публикуются через API.
func (s *Site) IsWordPress() bool {
	return s.SiteType == SiteTypeWordPress
}

// HasCapacity проверяет, остались ли на сайте свободные слоты под размещение указанного типа.
func (s *Site) HasCapacity(t PlacementType) bool {
	if t == PlacementTypeArticle {
		return s.UsedArticles < s.MaxArticles
	}
	return s.UsedLinks < s.MaxLinks
}

// Content ссылка или статья проекта, которую можно разместить на сайте.
type Content struct {
	ID         int64
	ProjectID  int64
	Type       PlacementType
	URL        string
	AnchorText string
	Title      string
	Body       string
	Slug       string
	UsageLimit int
	UsageCount int
}

func (c *Content) HasCapacity() bool {
	return c.UsageCount < c.UsageLimit
}

type Placement struct {
	ID                   int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	UserID               int64
	ProjectID            int64
	SiteID               int64
	Type                 PlacementType
	Status               PlacementStatus
	OriginalPrice        decimal.Decimal
	DiscountApplied      int
	FinalPrice           decimal.Decimal
	PurchasedAt          time.Time
	ScheduledPublishDate *time.Time
	PublishedAt          *time.Time
	ExpiresAt            *time.Time
	AutoRenewal          bool
	RenewalPrice         decimal.Decimal
	RenewalCount         int
	LastRenewedAt        *time.Time
	WordPressPostID      *int64
	ContentIDs           []int64
}

// IsActive размещение занимает слот на сайте.
func (p *Placement) IsActive() bool {
	switch p.Status {
	case PlacementStatusPending, PlacementStatusScheduled, PlacementStatusPlaced:
		return true
	default:
		return false
	}
}

// Refundable удаление размещения возвращает final_price. Для failed стоимость уже возвращена при
// неудачной публикации.
func (p *Placement) Refundable() bool {
	return p.Status != PlacementStatusFailed && p.FinalPrice.IsPositive()
}

type ReferralWithdrawal struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        int64
	Amount        decimal.Decimal
	Status        WithdrawalStatus
	WalletAddress string
	ProcessedBy   *int64
	ProcessedAt   *time.Time
	Comment       string
}

// PostContent статья, отправляемая в систему публикации.
type PostContent struct {
	Title string
	Body  string
	Slug  string
}
