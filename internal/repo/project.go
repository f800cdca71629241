package repo

import (
	"context"

	"time-tracker/internal/model"

	"gorm.io/gorm"
)

type ProjectRepo interface {
	ListActive(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, p *model.Project) error
	// SetArchived reports how many rows changed state.
	SetArchived(ctx context.Context, id int, archived bool) (int64, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) ListActive(ctx context.Context) ([]model.Project, error) {
	var items []model.Project
	return items, r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("name ASC").
		Find(&items).Error
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) SetArchived(ctx context.Context, id int, archived bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND is_archived = ?", id, !archived).
		Update("is_archived", archived)
	return res.RowsAffected, res.Error
}
