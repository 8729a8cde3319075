package batchjob

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/service"
)

type Servicer interface {
	BatchPurchase(ctx context.Context, userID int64, items []service.PurchaseItem) (*service.BatchPurchaseResult, error)
}
