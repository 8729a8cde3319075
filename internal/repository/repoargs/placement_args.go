package repoargs

import (
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/shopspring/decimal"
)

type PlacementCreate struct {
	UserID               int64
	ProjectID            int64
	SiteID               int64
	Type                 domain.PlacementType
	OriginalPrice        decimal.Decimal
	DiscountApplied      int
	FinalPrice           decimal.Decimal
	PurchasedAt          time.Time
	ScheduledPublishDate *time.Time
	AutoRenewal          bool
	RenewalPrice         decimal.Decimal
	ContentIDs           []int64
}

// PlacementStatusUpdate переход размещения в новый статус вместе с данными публикации.
type PlacementStatusUpdate struct {
	ID              int64
	Status          domain.PlacementStatus
	PublishedAt     *time.Time
	ExpiresAt       *time.Time
	WordPressPostID *int64
}

type PlacementRenew struct {
	ID           int64
	ExpiresAt    time.Time
	RenewalPrice decimal.Decimal
	RenewedAt    time.Time
}

// DuePlacements фильтр размещений для фоновой обработки.
type DuePlacements struct {
	Now   time.Time
	Limit uint
}
