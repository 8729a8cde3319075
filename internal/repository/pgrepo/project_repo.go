package pgrepo

import (
	"context"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/pkg/uow"
)

type ProjectRepository struct {
	conn uow.DBTX
}

func NewProjectRepository(conn uow.DBTX) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

// FindOwned ищет проект, принадлежащий пользователю. Чужой и несуществующий проект неразличимы:
// в обоих случаях возвращается domain.ErrRecordNotFound.
func (p *ProjectRepository) FindOwned(ctx context.Context, projectID, userID int64) (*domain.Project, error) {
	var project domain.Project
	err := p.conn.QueryRow(ctx,
		`SELECT id, user_id, name FROM projects WHERE id = $1 AND user_id = $2`,
		projectID, userID,
	).Scan(&project.ID, &project.UserID, &project.Name)
	if err != nil {
		return nil, convertErr(err, "finding project %d of user %d", projectID, userID)
	}
	return &project, nil
}
