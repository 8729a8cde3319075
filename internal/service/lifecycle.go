package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type PublishScheduledResult struct {
	Placement *domain.Placement
	Failed    bool
	Refunded  decimal.Decimal
}

// PublishScheduled публикует отложенное размещение, дата которого наступила. Если публикация не удалась,
// размещение помечается failed и стоимость возвращается пользователю в той же транзакции.
func (s *BillingService) PublishScheduled(
	ctx context.Context,
	placementID int64,
) (_ *PublishScheduledResult, err error) {
	ctx, done := s.ops.track(ctx, "publish_scheduled", attribute.Int64("placement_id", placementID))
	defer done(&err)

	existing, err := s.placeRepo.FindByID(ctx, placementID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "placement %d", placementID)
	}

	var result *PublishScheduledResult
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		if _, lockErr := s.balances.LockUser(ctx, tx, existing.UserID); lockErr != nil {
			return lockErr
		}
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}
		if placement.Status != domain.PlacementStatusScheduled {
			return fmt.Errorf("publish %s placement %d: %w", placement.Status, placementID, domain.ErrInvalidState)
		}
		if placement.ScheduledPublishDate != nil && placement.ScheduledPublishDate.After(s.now()) {
			return fmt.Errorf("placement %d is not due yet: %w", placementID, domain.ErrInvalidState)
		}

		site, content, targetErr := s.placements.PublishTarget(ctx, tx, placement)
		if targetErr != nil {
			return targetErr
		}
		published, pubErr := s.placements.Publish(ctx, tx, placement, site, content)
		if pubErr == nil {
			result = &PublishScheduledResult{Placement: published, Refunded: decimal.Zero}
			return nil
		}
		if !errors.Is(pubErr, domain.ErrPublishFailed) {
			return pubErr
		}

		failed, markErr := s.placements.MarkFailed(ctx, tx, placement)
		if markErr != nil {
			return markErr
		}
		result = &PublishScheduledResult{Placement: failed, Failed: true, Refunded: decimal.Zero}
		if placement.FinalPrice.IsPositive() {
			if _, creditErr := s.balances.Credit(ctx, tx, CreditArgs{
				UserID:      placement.UserID,
				Amount:      placement.FinalPrice,
				Type:        domain.TransactionTypeRefund,
				Description: fmt.Sprintf("Refund for failed publication of placement #%d", placement.ID),
				PlacementID: &placement.ID,
			}); creditErr != nil {
				return creditErr
			}
			result.Refunded = placement.FinalPrice
		}
		s.l.WithError(pubErr).WithField("placement_id", placementID).Warn("scheduled publication failed, refunded")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish scheduled placement %d: %w", placementID, err)
	}
	return result, nil
}

// ExpirePlacement переводит размещение с истекшим сроком в expired.
func (s *BillingService) ExpirePlacement(ctx context.Context, placementID int64) (_ *domain.Placement, err error) {
	ctx, done := s.ops.track(ctx, "expire", attribute.Int64("placement_id", placementID))
	defer done(&err)

	var result *domain.Placement
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		placement, lockErr := s.lockPlacement(ctx, tx, placementID)
		if lockErr != nil {
			return lockErr
		}
		if placement.Status != domain.PlacementStatusPlaced {
			return fmt.Errorf("expire %s placement %d: %w", placement.Status, placementID, domain.ErrInvalidState)
		}
		if placement.ExpiresAt == nil || placement.ExpiresAt.After(s.now()) {
			return fmt.Errorf("placement %d has not expired: %w", placementID, domain.ErrInvalidState)
		}
		expired, markErr := s.placements.MarkExpired(ctx, tx, placement)
		if markErr != nil {
			return markErr
		}
		result = expired
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expire placement %d: %w", placementID, err)
	}
	s.l.WithFields(logrus.Fields{"placement_id": placementID, "user_id": result.UserID}).Info("placement expired")
	return result, nil
}

func (s *BillingService) DueScheduled(ctx context.Context, limit uint) ([]domain.Placement, error) {
	placements, err := s.placeRepo.ListDueScheduled(ctx, repoargs.DuePlacements{Now: s.now(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list due scheduled placements: %w", err)
	}
	return placements, nil
}

func (s *BillingService) DueAutoRenewal(ctx context.Context, limit uint) ([]domain.Placement, error) {
	placements, err := s.placeRepo.ListDueAutoRenewal(ctx, repoargs.DuePlacements{Now: s.now(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list due auto renewal placements: %w", err)
	}
	return placements, nil
}

func (s *BillingService) DueExpiry(ctx context.Context, limit uint) ([]domain.Placement, error) {
	placements, err := s.placeRepo.ListDueExpiry(ctx, repoargs.DuePlacements{Now: s.now(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list expired placements: %w", err)
	}
	return placements, nil
}
