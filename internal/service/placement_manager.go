package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/sirupsen/logrus"
)

const (
	// MaxScheduleAhead насколько далеко вперед можно отложить публикацию.
	MaxScheduleAhead = 90 * 24 * time.Hour
	// scheduleGrace допуск на расхождение часов клиента и сервера при проверке даты публикации.
	scheduleGrace = time.Minute
)

type PlacementConfig struct {
	RenewalPeriod  time.Duration
	PublishTimeout time.Duration
}

// PlacementManager управляет жизненным циклом размещения: проверка перед покупкой, создание со счетчиками
// использования, публикация, удаление.
type PlacementManager struct {
	projects   ProjectRepository
	sites      SiteRepository
	contents   ContentRepository
	placements PlacementRepository
	publisher  Publisher
	conf       PlacementConfig
	now        func() time.Time
	l          *logrus.Entry
}

func NewPlacementManager(
	u uow.UOW,
	publisher Publisher,
	conf PlacementConfig,
	l *logrus.Logger,
) (*PlacementManager, error) {
	projects, err := connRepo[ProjectRepository](u, repoargs.ProjectRepoName)
	if err != nil {
		return nil, err
	}
	sites, err := connRepo[SiteRepository](u, repoargs.SiteRepoName)
	if err != nil {
		return nil, err
	}
	contents, err := connRepo[ContentRepository](u, repoargs.ContentRepoName)
	if err != nil {
		return nil, err
	}
	placements, err := connRepo[PlacementRepository](u, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}
	return &PlacementManager{
		projects:   projects,
		sites:      sites,
		contents:   contents,
		placements: placements,
		publisher:  publisher,
		conf:       conf,
		now:        time.Now,
		l:          l.WithField("component", "placement_manager"),
	}, nil
}

type PurchaseArgs struct {
	UserID        int64
	ProjectID     int64
	SiteID        int64
	Type          domain.PlacementType
	ContentIDs    []int64
	ScheduledDate *time.Time
	AutoRenewal   bool
}

// PurchaseTarget сущности, прошедшие проверку перед покупкой.
type PurchaseTarget struct {
	Project *domain.Project
	Site    *domain.Site
	Content *domain.Content
}

type CreatePlacementArgs struct {
	Purchase PurchaseArgs
	Target   *PurchaseTarget
	Quote    priceQuote
}

// ValidatePurchase проверяет покупку до открытия транзакции: принадлежность проекта, контент, свободные слоты,
// отсутствие дубликата и дату публикации. Ничего не изменяет.
func (p *PlacementManager) ValidatePurchase(ctx context.Context, args PurchaseArgs) (*PurchaseTarget, error) {
	if err := p.validateShape(args); err != nil {
		return nil, err
	}

	project, err := p.projects.FindOwned(ctx, args.ProjectID, args.UserID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "project %d", args.ProjectID)
	}
	site, err := p.sites.FindByID(ctx, args.SiteID)
	if err != nil {
		return nil, notFoundOrForbidden(err, "site %d", args.SiteID)
	}
	content, err := p.contents.FindByID(ctx, args.ContentIDs[0])
	if err != nil {
		return nil, notFoundOrForbidden(err, "content %d", args.ContentIDs[0])
	}
	if content.ProjectID != project.ID {
		return nil, fmt.Errorf("content %d of project %d: %w", content.ID, project.ID, domain.ErrNotFoundOrForbidden)
	}
	if content.Type != args.Type {
		return nil, domain.NewValidationError("contentIds", fmt.Sprintf("content %d is not a %s", content.ID, args.Type))
	}
	if !content.HasCapacity() {
		return nil, fmt.Errorf("content %d used %d of %d: %w",
			content.ID, content.UsageCount, content.UsageLimit, domain.ErrExhaustedCapacity)
	}
	if !site.HasCapacity(args.Type) {
		return nil, fmt.Errorf("site %d has no free %s slots: %w", site.ID, args.Type, domain.ErrExhaustedCapacity)
	}

	exists, err := p.placements.ExistsActive(ctx, project.ID, site.ID, args.Type)
	if err != nil {
		return nil, fmt.Errorf("check existing placement: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("project %d on site %d: %w", project.ID, site.ID, domain.ErrAlreadyPlaced)
	}

	return &PurchaseTarget{Project: project, Site: site, Content: content}, nil
}

func (p *PlacementManager) validateShape(args PurchaseArgs) error {
	if !args.Type.Valid() {
		return domain.NewValidationError("type", "must be link or article")
	}
	if len(args.ContentIDs) != 1 {
		return domain.NewValidationError("contentIds", "exactly one content id is required")
	}
	if args.ScheduledDate != nil {
		now := p.now()
		if args.ScheduledDate.Before(now.Add(-scheduleGrace)) {
			return domain.NewValidationError("scheduledDate", "must not be in the past")
		}
		if args.ScheduledDate.After(now.Add(MaxScheduleAhead)) {
			return domain.NewValidationError("scheduledDate", "must be within 90 days")
		}
	}
	return nil
}

// Create вставляет размещение в статусе pending и занимает слоты контента и сайта. Лимиты повторно
// проверяются условными UPDATE внутри транзакции.
func (p *PlacementManager) Create(
	ctx context.Context,
	tx uow.TX,
	args CreatePlacementArgs,
) (*domain.Placement, error) {
	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}

	purchase := args.Purchase
	// проекты принадлежат пользователю, строка которого уже заблокирована, поэтому проверка под транзакцией
	// исключает двойное размещение конкурентными запросами.
	exists, err := placements.ExistsActive(ctx, purchase.ProjectID, purchase.SiteID, purchase.Type)
	if err != nil {
		return nil, fmt.Errorf("check existing placement: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("project %d on site %d: %w", purchase.ProjectID, purchase.SiteID, domain.ErrAlreadyPlaced)
	}

	placement, err := placements.Create(ctx, repoargs.PlacementCreate{
		UserID:               purchase.UserID,
		ProjectID:            purchase.ProjectID,
		SiteID:               purchase.SiteID,
		Type:                 purchase.Type,
		OriginalPrice:        args.Quote.OriginalPrice,
		DiscountApplied:      args.Quote.DiscountPercent,
		FinalPrice:           args.Quote.FinalPrice,
		PurchasedAt:          p.now(),
		ScheduledPublishDate: purchase.ScheduledDate,
		AutoRenewal:          purchase.AutoRenewal && purchase.Type == domain.PlacementTypeLink,
		RenewalPrice:         args.Quote.RenewalPrice,
		ContentIDs:           purchase.ContentIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("create placement: %w", err)
	}

	if err := p.Reserve(ctx, tx, placement); err != nil {
		return nil, err
	}
	return placement, nil
}

// Publish завершает покупку. Статья на WordPress-сайте публикуется через Publisher синхронно: ошибка
// возвращается как *domain.PublishError и откатывает всю транзакцию. Ссылки выводятся плагином и становятся
// placed без внешнего вызова. Размещение с датой в будущем получает статус scheduled.
func (p *PlacementManager) Publish(
	ctx context.Context,
	tx uow.TX,
	placement *domain.Placement,
	site *domain.Site,
	content *domain.Content,
) (*domain.Placement, error) {
	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}

	now := p.now()
	if placement.ScheduledPublishDate != nil && placement.ScheduledPublishDate.After(now) {
		updated, updErr := placements.UpdateStatus(ctx, repoargs.PlacementStatusUpdate{
			ID:     placement.ID,
			Status: domain.PlacementStatusScheduled,
		})
		if updErr != nil {
			return nil, fmt.Errorf("schedule placement %d: %w", placement.ID, updErr)
		}
		return updated, nil
	}

	update := repoargs.PlacementStatusUpdate{
		ID:          placement.ID,
		Status:      domain.PlacementStatusPlaced,
		PublishedAt: &now,
	}
	if placement.Type == domain.PlacementTypeLink {
		expiresAt := now.Add(p.conf.RenewalPeriod)
		update.ExpiresAt = &expiresAt
	}
	if placement.Type == domain.PlacementTypeArticle && site.IsWordPress() {
		postID, pubErr := p.publish(ctx, site, content)
		if pubErr != nil {
			return nil, pubErr
		}
		update.WordPressPostID = &postID
	}

	updated, err := placements.UpdateStatus(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("mark placement %d placed: %w", placement.ID, err)
	}
	return updated, nil
}

func (p *PlacementManager) publish(ctx context.Context, site *domain.Site, content *domain.Content) (int64, error) {
	if p.publisher == nil {
		return 0, domain.NewPublishError(site.SiteURL, errors.New("publisher is not configured"))
	}
	pubCtx := ctx
	if p.conf.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, p.conf.PublishTimeout)
		defer cancel()
	}

	postID, err := p.publisher.Publish(pubCtx, site.SiteURL, site.APIKey, domain.PostContent{
		Title: content.Title,
		Body:  content.Body,
		Slug:  content.Slug,
	})
	if err != nil {
		p.l.WithError(err).WithField("site_url", site.SiteURL).Warn("article publishing failed")
		return 0, domain.NewPublishError(site.SiteURL, err)
	}
	return postID, nil
}

// Remove удаляет размещение и освобождает слоты контента и сайта.
func (p *PlacementManager) Remove(ctx context.Context, tx uow.TX, placement *domain.Placement) error {
	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return err
	}
	if err := p.release(ctx, tx, placement); err != nil {
		return err
	}
	if err := placements.Delete(ctx, placement.ID); err != nil {
		return fmt.Errorf("delete placement %d: %w", placement.ID, err)
	}
	return nil
}

// release уменьшает счетчики использования. Для уже освобожденных (expired, failed) размещений не делает ничего.
func (p *PlacementManager) release(ctx context.Context, tx uow.TX, placement *domain.Placement) error {
	if !placement.IsActive() {
		return nil
	}
	contents, err := txRepo[ContentRepository](tx, repoargs.ContentRepoName)
	if err != nil {
		return err
	}
	sites, err := txRepo[SiteRepository](tx, repoargs.SiteRepoName)
	if err != nil {
		return err
	}
	for _, contentID := range placement.ContentIDs {
		if err := contents.DecrementUsage(ctx, contentID); err != nil {
			return fmt.Errorf("release content %d: %w", contentID, err)
		}
	}
	if err := sites.DecrementUsage(ctx, placement.SiteID, placement.Type); err != nil {
		return fmt.Errorf("release site %d: %w", placement.SiteID, err)
	}
	return nil
}

// CleanupRemote удаляет опубликованную статью на сайте. Ошибка только логируется: удаление контента
// не влияет на деньги.
func (p *PlacementManager) CleanupRemote(ctx context.Context, placement *domain.Placement, site *domain.Site) {
	if placement.WordPressPostID == nil || site == nil || !site.IsWordPress() || p.publisher == nil {
		return
	}
	if err := p.publisher.DeletePost(ctx, site.SiteURL, site.APIKey, *placement.WordPressPostID); err != nil {
		p.l.WithError(err).WithFields(logrus.Fields{
			"placement_id": placement.ID,
			"site_url":     site.SiteURL,
			"post_id":      *placement.WordPressPostID,
		}).Warn("remote post cleanup failed")
	}
}

// MarkExpired переводит размещение в expired и освобождает слоты.
func (p *PlacementManager) MarkExpired(
	ctx context.Context,
	tx uow.TX,
	placement *domain.Placement,
) (*domain.Placement, error) {
	return p.finish(ctx, tx, placement, domain.PlacementStatusExpired)
}

// MarkFailed переводит размещение в failed и освобождает слоты.
func (p *PlacementManager) MarkFailed(
	ctx context.Context,
	tx uow.TX,
	placement *domain.Placement,
) (*domain.Placement, error) {
	return p.finish(ctx, tx, placement, domain.PlacementStatusFailed)
}

func (p *PlacementManager) finish(
	ctx context.Context,
	tx uow.TX,
	placement *domain.Placement,
	status domain.PlacementStatus,
) (*domain.Placement, error) {
	if !placement.IsActive() {
		return nil, fmt.Errorf("placement %d is %s: %w", placement.ID, placement.Status, domain.ErrInvalidState)
	}
	placements, err := txRepo[PlacementRepository](tx, repoargs.PlacementRepoName)
	if err != nil {
		return nil, err
	}
	if err := p.release(ctx, tx, placement); err != nil {
		return nil, err
	}
	updated, err := placements.UpdateStatus(ctx, repoargs.PlacementStatusUpdate{ID: placement.ID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("mark placement %d %s: %w", placement.ID, status, err)
	}
	return updated, nil
}

// SiteFor возвращает сайт размещения вне транзакции.
func (p *PlacementManager) SiteFor(ctx context.Context, placement *domain.Placement) (*domain.Site, error) {
	site, err := p.sites.FindByID(ctx, placement.SiteID)
	if err != nil {
		return nil, fmt.Errorf("find site %d: %w", placement.SiteID, err)
	}
	return site, nil
}

// Reserve повторно занимает слоты для размещения, освободившего их при истечении срока.
func (p *PlacementManager) Reserve(ctx context.Context, tx uow.TX, placement *domain.Placement) error {
	contents, err := txRepo[ContentRepository](tx, repoargs.ContentRepoName)
	if err != nil {
		return err
	}
	sites, err := txRepo[SiteRepository](tx, repoargs.SiteRepoName)
	if err != nil {
		return err
	}
	for _, contentID := range placement.ContentIDs {
		if err := contents.IncrementUsage(ctx, contentID); err != nil {
			return fmt.Errorf("reserve content %d: %w", contentID, err)
		}
	}
	if err := sites.IncrementUsage(ctx, placement.SiteID, placement.Type); err != nil {
		return fmt.Errorf("reserve site %d: %w", placement.SiteID, err)
	}
	return nil
}

// PublishTarget сайт и контент размещения, прочитанные внутри транзакции.
func (p *PlacementManager) PublishTarget(
	ctx context.Context,
	tx uow.TX,
	placement *domain.Placement,
) (*domain.Site, *domain.Content, error) {
	sites, err := txRepo[SiteRepository](tx, repoargs.SiteRepoName)
	if err != nil {
		return nil, nil, err
	}
	contents, err := txRepo[ContentRepository](tx, repoargs.ContentRepoName)
	if err != nil {
		return nil, nil, err
	}
	site, err := sites.FindByID(ctx, placement.SiteID)
	if err != nil {
		return nil, nil, fmt.Errorf("find site %d: %w", placement.SiteID, err)
	}
	if len(placement.ContentIDs) == 0 {
		return site, &domain.Content{}, nil
	}
	content, err := contents.FindByID(ctx, placement.ContentIDs[0])
	if err != nil {
		return nil, nil, fmt.Errorf("find content %d: %w", placement.ContentIDs[0], err)
	}
	return site, content, nil
}
