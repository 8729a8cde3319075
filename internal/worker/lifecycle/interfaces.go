package lifecycle

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service"
)

type Servicer interface {
	DueScheduled(ctx context.Context, limit uint) ([]domain.Placement, error)
	DueAutoRenewal(ctx context.Context, limit uint) ([]domain.Placement, error)
	DueExpiry(ctx context.Context, limit uint) ([]domain.Placement, error)
	PublishScheduled(ctx context.Context, placementID int64) (*service.PublishScheduledResult, error)
	AutoRenew(ctx context.Context, placementID int64) (*service.RenewResult, error)
	ExpirePlacement(ctx context.Context, placementID int64) (*domain.Placement, error)
}
