package repo

import (
	"context"
	"errors"
	"time"

	"time-tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepo interface {
	Append(ctx context.Context, l *model.AiUsageLog) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type SummaryRepo interface {
	// Get returns nil, nil when the user has no summary.
	Get(ctx context.Context, userID string) (*model.AiSummary, error)
	Upsert(ctx context.Context, s *model.AiSummary) error
	Delete(ctx context.Context, userID string) error
}

type usageRepo struct{ db *gorm.DB }

func NewUsageRepo(db *gorm.DB) UsageRepo {
	return &usageRepo{db: db}
}

func (r *usageRepo) Append(ctx context.Context, l *model.AiUsageLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *usageRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&model.AiUsageLog{}).
		Where("timestamp >= ?", since).
		Count(&n).Error
}

type summaryRepo struct{ db *gorm.DB }

func NewSummaryRepo(db *gorm.DB) SummaryRepo {
	return &summaryRepo{db: db}
}

func (r *summaryRepo) Get(ctx context.Context, userID string) (*model.AiSummary, error) {
	var s model.AiSummary
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *summaryRepo) Upsert(ctx context.Context, s *model.AiSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "last_updated"}),
	}).Create(s).Error
}

func (r *summaryRepo) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AiSummary{}).Error
}
