package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/pkg/uow"
)

type ContentRepository struct {
	conn uow.DBTX
}

func NewContentRepository(conn uow.DBTX) *ContentRepository {
	return &ContentRepository{conn: conn}
}

func (c *ContentRepository) FindByID(ctx context.Context, id int64) (*domain.Content, error) {
	var (
		content     domain.Content
		contentType string
	)
	err := c.conn.QueryRow(ctx, `
		SELECT id, project_id, type, url, anchor_text, title, body, slug, usage_limit, usage_count
		FROM project_contents WHERE id = $1`, id,
	).Scan(
		&content.ID,
		&content.ProjectID,
		&contentType,
		&content.URL,
		&content.AnchorText,
		&content.Title,
		&content.Body,
		&content.Slug,
		&content.UsageLimit,
		&content.UsageCount,
	)
	if err != nil {
		return nil, convertErr(err, "finding content %d", id)
	}
	content.Type = domain.PlacementType(contentType)
	return &content, nil
}

// IncrementUsage увеличивает счетчик использований, если лимит не исчерпан. Иначе domain.ErrExhaustedCapacity.
func (c *ContentRepository) IncrementUsage(ctx context.Context, id int64) error {
	tag, err := c.conn.Exec(ctx,
		`UPDATE project_contents SET usage_count = usage_count + 1 WHERE id = $1 AND usage_count < usage_limit`,
		id,
	)
	if err != nil {
		return convertErr(err, "incrementing usage of content %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExhaustedCapacity
	}
	return nil
}

func (c *ContentRepository) DecrementUsage(ctx context.Context, id int64) error {
	_, err := c.conn.Exec(ctx,
		`UPDATE project_contents SET usage_count = GREATEST(usage_count - 1, 0) WHERE id = $1`,
		id,
	)
	if err != nil {
		return convertErr(err, "decrementing usage of content %d", id)
	}
	return nil
}
