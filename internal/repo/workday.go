package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"time-tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayRange bounds a WorkDay query. Zero values leave that side open.
type DayRange struct {
	From time.Time
	To   time.Time
}

type WorkDayRepo interface {
	// AddEntry upserts the (user, date) WorkDay and appends e to it in one
	// transaction.
	AddEntry(ctx context.Context, e *model.TimeEntry) error
	List(ctx context.Context, userID string, r DayRange) ([]model.WorkDay, error)
	SumMinutes(ctx context.Context, userID string, date time.Time) (float64, error)
	// DeleteEntry removes the user's entry and its WorkDay when that was the
	// last entry. A missing id returns nil, nil.
	DeleteEntry(ctx context.Context, userID string, id int) (*model.TimeEntry, error)
}

type workDayRepo struct{ db *gorm.DB }

func NewWorkDayRepo(db *gorm.DB) WorkDayRepo {
	return &workDayRepo{db: db}
}

func (r *workDayRepo) AddEntry(ctx context.Context, e *model.TimeEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day := model.WorkDay{UserID: e.UserID, Date: e.WorkDate}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&day).Error; err != nil {
			return fmt.Errorf("upsert work day: %w", err)
		}
		var stored model.WorkDay
		if err := tx.Where("user_id = ? AND date = ?", e.UserID, e.WorkDate).First(&stored).Error; err != nil {
			return fmt.Errorf("load work day: %w", err)
		}
		e.WorkDayID = stored.ID
		if err := tx.Omit("Project").Create(e).Error; err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
}

func (r *workDayRepo) List(ctx context.Context, userID string, rng DayRange) ([]model.WorkDay, error) {
	q := r.db.WithContext(ctx).
		Preload("TimeEntries", "user_id = ?", userID).
		Preload("TimeEntries.Project").
		Where("user_id = ?", userID)
	if !rng.From.IsZero() {
		q = q.Where("date >= ?", rng.From)
	}
	if !rng.To.IsZero() {
		q = q.Where("date <= ?", rng.To)
	}

	var days []model.WorkDay
	if err := q.Order("date DESC").Find(&days).Error; err != nil {
		return nil, fmt.Errorf("query work days: %w", err)
	}
	return days, nil
}

func (r *workDayRepo) SumMinutes(ctx context.Context, userID string, date time.Time) (float64, error) {
	var hours float64
	err := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Select("COALESCE(SUM(hours_worked), 0)").
		Where("user_id = ? AND work_date = ?", userID, date).
		Scan(&hours).Error
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}
	return hours * 60, nil
}

func (r *workDayRepo) DeleteEntry(ctx context.Context, userID string, id int) (*model.TimeEntry, error) {
	var deleted *model.TimeEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e model.TimeEntry
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load entry: %w", err)
		}
		if err := tx.Delete(&model.TimeEntry{}, e.ID).Error; err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		var remaining int64
		if err := tx.Model(&model.TimeEntry{}).Where("work_day_id = ?", e.WorkDayID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		if remaining == 0 {
			if err := tx.Delete(&model.WorkDay{}, e.WorkDayID).Error; err != nil {
				return fmt.Errorf("delete work day: %w", err)
			}
		}
		deleted = &e
		return nil
	})
	return deleted, err
}
