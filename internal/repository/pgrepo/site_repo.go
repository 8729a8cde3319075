package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/pkg/uow"
)

type SiteRepository struct {
	conn uow.DBTX
}

func NewSiteRepository(conn uow.DBTX) *SiteRepository {
	return &SiteRepository{conn: conn}
}

func (s *SiteRepository) FindByID(ctx context.Context, id int64) (*domain.Site, error) {
	var (
		site     domain.Site
		siteType string
	)
	err := s.conn.QueryRow(ctx, `
		SELECT id, user_id, site_url, site_name, api_key, site_type, max_links, used_links, max_articles, used_articles
		FROM sites WHERE id = $1`, id,
	).Scan(
		&site.ID,
		&site.UserID,
		&site.SiteURL,
		&site.SiteName,
		&site.APIKey,
		&siteType,
		&site.MaxLinks,
		&site.UsedLinks,
		&site.MaxArticles,
		&site.UsedArticles,
	)
	if err != nil {
		return nil, convertErr(err, "finding site %d", id)
	}
	site.SiteType = domain.SiteType(siteType)
	return &site, nil
}

// IncrementUsage занимает слот на сайте. Проверка лимита и инкремент выполняются одним условным UPDATE,
// поэтому конкурентные покупки не превысят лимит. Если слотов нет, возвращает domain.ErrExhaustedCapacity.
func (s *SiteRepository) IncrementUsage(ctx context.Context, siteID int64, t domain.PlacementType) error {
	query := `UPDATE sites SET used_links = used_links + 1 WHERE id = $1 AND used_links < max_links`
	if t == domain.PlacementTypeArticle {
		query = `UPDATE sites SET used_articles = used_articles + 1 WHERE id = $1 AND used_articles < max_articles`
	}
	tag, err := s.conn.Exec(ctx, query, siteID)
	if err != nil {
		return convertErr(err, "incrementing %s usage of site %d", t, siteID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExhaustedCapacity
	}
	return nil
}

// DecrementUsage освобождает слот. Счетчик не опускается ниже нуля.
func (s *SiteRepository) DecrementUsage(ctx context.Context, siteID int64, t domain.PlacementType) error {
	query := `UPDATE sites SET used_links = GREATEST(used_links - 1, 0) WHERE id = $1`
	if t == domain.PlacementTypeArticle {
		query = `UPDATE sites SET used_articles = GREATEST(used_articles - 1, 0) WHERE id = $1`
	}
	if _, err := s.conn.Exec(ctx, query, siteID); err != nil {
		return convertErr(err, "decrementing %s usage of site %d", t, siteID)
	}
	return nil
}
