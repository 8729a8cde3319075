package service

import (
	"context"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LockByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateBalance(ctx context.Context, args repoargs.UpdateUserBalance) (*domain.User, error)
	UpdateReferralBalance(ctx context.Context, args repoargs.UpdateReferralBalance) (*domain.User, error)
}

type LedgerRepository interface {
	Create(ctx context.Context, args repoargs.LedgerEntryCreate) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID int64, limit, offset uint) ([]domain.Transaction, error)
}

type ProjectRepository interface {
	FindOwned(ctx context.Context, projectID, userID int64) (*domain.Project, error)
}

type SiteRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Site, error)
	IncrementUsage(ctx context.Context, siteID int64, t domain.PlacementType) error
	DecrementUsage(ctx context.Context, siteID int64, t domain.PlacementType) error
}

type ContentRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Content, error)
	IncrementUsage(ctx context.Context, id int64) error
	DecrementUsage(ctx context.Context, id int64) error
}

type PlacementRepository interface {
	Create(ctx context.Context, args repoargs.PlacementCreate) (*domain.Placement, error)
	FindByID(ctx context.Context, id int64) (*domain.Placement, error)
	LockByID(ctx context.Context, id int64) (*domain.Placement, error)
	ExistsActive(ctx context.Context, projectID, siteID int64, t domain.PlacementType) (bool, error)
	UpdateStatus(ctx context.Context, args repoargs.PlacementStatusUpdate) (*domain.Placement, error)
	Renew(ctx context.Context, args repoargs.PlacementRenew) (*domain.Placement, error)
	SetAutoRenewal(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
	ListDueScheduled(ctx context.Context, args repoargs.DuePlacements) ([]domain.Placement, error)
	ListDueAutoRenewal(ctx context.Context, args repoargs.DuePlacements) ([]domain.Placement, error)
	ListDueExpiry(ctx context.Context, args repoargs.DuePlacements) ([]domain.Placement, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, args repoargs.WithdrawalCreate) (*domain.ReferralWithdrawal, error)
	FindByID(ctx context.Context, id int64) (*domain.ReferralWithdrawal, error)
	LockByID(ctx context.Context, id int64) (*domain.ReferralWithdrawal, error)
	Process(ctx context.Context, args repoargs.WithdrawalProcess) (*domain.ReferralWithdrawal, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ReferralWithdrawal, error)
}

// Publisher внешняя система публикации статей на сайтах партнеров.
type Publisher interface {
	Publish(ctx context.Context, siteURL, apiKey string, post domain.PostContent) (int64, error)
	DeletePost(ctx context.Context, siteURL, apiKey string, postID int64) error
}

// MetricsRecorder принимает результаты денежных операций.
type MetricsRecorder interface {
	ObserveOperation(operation string, err error, elapsed time.Duration)
	ObserveLedgerEntry(t domain.TransactionType, amount decimal.Decimal)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, error, time.Duration)              {}
func (nopMetrics) ObserveLedgerEntry(domain.TransactionType, decimal.Decimal) {}
