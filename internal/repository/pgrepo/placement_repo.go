package pgrepo

import (
	"context"
	"fmt"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const placementColumns = `p.id, p.created_at, p.updated_at, p.user_id, p.project_id, p.site_id, p.type, p.status,
	p.original_price, p.discount_applied, p.final_price, p.purchased_at, p.scheduled_publish_date, p.published_at,
	p.expires_at, p.auto_renewal, p.renewal_price, p.renewal_count, p.last_renewed_at, p.wordpress_post_id,
	ARRAY(SELECT pc.content_id FROM placement_content pc WHERE pc.placement_id = p.id ORDER BY pc.content_id)`

type PlacementRepository struct {
	conn uow.DBTX
}

func NewPlacementRepository(conn uow.DBTX) *PlacementRepository {
	return &PlacementRepository{conn: conn}
}

// Create вставляет размещение в статусе pending вместе со связями с контентом.
func (p *PlacementRepository) Create(ctx context.Context, args repoargs.PlacementCreate) (*domain.Placement, error) {
	var id int64
	err := p.conn.QueryRow(ctx, `
		INSERT INTO placements (user_id, project_id, site_id, type, status, original_price, discount_applied,
			final_price, purchased_at, scheduled_publish_date, auto_renewal, renewal_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		args.UserID,
		args.ProjectID,
		args.SiteID,
		string(args.Type),
		string(domain.PlacementStatusPending),
		args.OriginalPrice,
		args.DiscountApplied,
		args.FinalPrice,
		args.PurchasedAt,
		args.ScheduledPublishDate,
		args.AutoRenewal,
		args.RenewalPrice,
	).Scan(&id)
	if err != nil {
		return nil, convertErr(err, "creating placement for user %d", args.UserID)
	}

	for _, contentID := range args.ContentIDs {
		if _, linkErr := p.conn.Exec(ctx,
			`INSERT INTO placement_content (placement_id, content_id) VALUES ($1, $2)`,
			id, contentID,
		); linkErr != nil {
			return nil, convertErr(linkErr, "linking content %d to placement %d", contentID, id)
		}
	}

	return p.FindByID(ctx, id)
}

func (p *PlacementRepository) FindByID(ctx context.Context, id int64) (*domain.Placement, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+placementColumns+` FROM placements p WHERE p.id = $1`, id)
	placement, err := scanPlacement(row)
	if err != nil {
		return nil, convertErr(err, "finding placement %d", id)
	}
	return placement, nil
}

// LockByID читает размещение с блокировкой строки до конца транзакции.
func (p *PlacementRepository) LockByID(ctx context.Context, id int64) (*domain.Placement, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+placementColumns+` FROM placements p WHERE p.id = $1 FOR UPDATE OF p`, id)
	placement, err := scanPlacement(row)
	if err != nil {
		return nil, convertErr(err, "locking placement %d", id)
	}
	return placement, nil
}

// ExistsActive проверяет, размещен ли уже проект на сайте с указанным типом (pending, scheduled или placed).
func (p *PlacementRepository) ExistsActive(
	ctx context.Context,
	projectID, siteID int64,
	t domain.PlacementType,
) (bool, error) {
	var exists bool
	err := p.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM placements
			WHERE project_id = $1 AND site_id = $2 AND type = $3 AND status IN ('pending', 'scheduled', 'placed')
		)`,
		projectID, siteID, string(t),
	).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking placement of project %d on site %d", projectID, siteID)
	}
	return exists, nil
}

// UpdateStatus переводит размещение в новый статус. Nil-поля аргумента оставляют значения колонок без изменений.
func (p *PlacementRepository) UpdateStatus(
	ctx context.Context,
	args repoargs.PlacementStatusUpdate,
) (*domain.Placement, error) {
	tag, err := p.conn.Exec(ctx, `
		UPDATE placements SET
			status = $2,
			published_at = COALESCE($3, published_at),
			expires_at = COALESCE($4, expires_at),
			wordpress_post_id = COALESCE($5, wordpress_post_id),
			updated_at = now()
		WHERE id = $1`,
		args.ID, string(args.Status), args.PublishedAt, args.ExpiresAt, args.WordPressPostID,
	)
	if err != nil {
		return nil, convertErr(err, "updating status of placement %d", args.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("[repository/updating status of placement %d] %w", args.ID, domain.ErrRecordNotFound)
	}
	return p.FindByID(ctx, args.ID)
}

// Renew продлевает размещение: новый срок, цена продления, счетчик продлений. Статус становится placed.
func (p *PlacementRepository) Renew(ctx context.Context, args repoargs.PlacementRenew) (*domain.Placement, error) {
	tag, err := p.conn.Exec(ctx, `
		UPDATE placements SET
			status = 'placed',
			expires_at = $2,
			renewal_price = $3,
			renewal_count = renewal_count + 1,
			last_renewed_at = $4,
			updated_at = now()
		WHERE id = $1`,
		args.ID, args.ExpiresAt, args.RenewalPrice, args.RenewedAt,
	)
	if err != nil {
		return nil, convertErr(err, "renewing placement %d", args.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("[repository/renewing placement %d] %w", args.ID, domain.ErrRecordNotFound)
	}
	return p.FindByID(ctx, args.ID)
}

func (p *PlacementRepository) SetAutoRenewal(ctx context.Context, id int64, enabled bool) error {
	tag, err := p.conn.Exec(ctx,
		`UPDATE placements SET auto_renewal = $2, updated_at = now() WHERE id = $1`,
		id, enabled,
	)
	if err != nil {
		return convertErr(err, "setting auto renewal of placement %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/setting auto renewal of placement %d] %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

// Delete удаляет размещение. Связи с контентом удаляются каскадно, записи леджера остаются.
func (p *PlacementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.conn.Exec(ctx, `DELETE FROM placements WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting placement %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/deleting placement %d] %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

// ListDueScheduled отложенные размещения, дата публикации которых наступила.
func (p *PlacementRepository) ListDueScheduled(
	ctx context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return p.listDue(ctx, `
		SELECT `+placementColumns+` FROM placements p
		WHERE p.status = 'scheduled' AND p.scheduled_publish_date <= $1
		ORDER BY p.scheduled_publish_date, p.id
		LIMIT $2`, args)
}

// ListDueAutoRenewal истекшие ссылки с включенным автопродлением.
func (p *PlacementRepository) ListDueAutoRenewal(
	ctx context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return p.listDue(ctx, `
		SELECT `+placementColumns+` FROM placements p
		WHERE p.status = 'placed' AND p.type = 'link' AND p.auto_renewal AND p.expires_at <= $1
		ORDER BY p.expires_at, p.id
		LIMIT $2`, args)
}

// ListDueExpiry размещения с истекшим сроком без автопродления.
func (p *PlacementRepository) ListDueExpiry(
	ctx context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return p.listDue(ctx, `
		SELECT `+placementColumns+` FROM placements p
		WHERE p.status = 'placed' AND NOT p.auto_renewal AND p.expires_at <= $1
		ORDER BY p.expires_at, p.id
		LIMIT $2`, args)
}

func (p *PlacementRepository) listDue(
	ctx context.Context,
	query string,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	rows, err := p.conn.Query(ctx, query, args.Now, args.Limit)
	if err != nil {
		return nil, convertErr(err, "listing due placements")
	}
	defer rows.Close()

	var placements []domain.Placement
	for rows.Next() {
		placement, scanErr := scanPlacement(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning due placements")
		}
		placements = append(placements, *placement)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing due placements")
	}
	return placements, nil
}

func scanPlacement(row pgx.Row) (*domain.Placement, error) {
	var (
		placement     domain.Placement
		placementType string
		status        string
	)
	err := row.Scan(
		&placement.ID,
		&placement.CreatedAt,
		&placement.UpdatedAt,
		&placement.UserID,
		&placement.ProjectID,
		&placement.SiteID,
		&placementType,
		&status,
		&placement.OriginalPrice,
		&placement.DiscountApplied,
		&placement.FinalPrice,
		&placement.PurchasedAt,
		&placement.ScheduledPublishDate,
		&placement.PublishedAt,
		&placement.ExpiresAt,
		&placement.AutoRenewal,
		&placement.RenewalPrice,
		&placement.RenewalCount,
		&placement.LastRenewedAt,
		&placement.WordPressPostID,
		&placement.ContentIDs,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	placement.Type = domain.PlacementType(placementType)
	placement.Status = domain.PlacementStatus(status)
	return &placement, nil
}
