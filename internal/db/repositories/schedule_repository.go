package repositories

import (
	"context"

	"infinite-experiment/flighttracker/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// ScheduleRepository handles schedule_entries table operations
type ScheduleRepository struct {
	db *gormlib.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gormlib.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindAll returns every schedule row in insertion order
func (r *ScheduleRepository) FindAll(ctx context.Context) ([]gorm.ScheduleEntry, error) {
	var entries []gorm.ScheduleEntry
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// BatchInsert inserts multiple schedule rows
func (r *ScheduleRepository) BatchInsert(ctx context.Context, entries []gorm.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		CreateInBatches(entries, 100).Error
}

// DeleteAll deletes all schedule rows
func (r *ScheduleRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&gorm.ScheduleEntry{}).Error
}

// ReplaceAll swaps the whole timetable in one transaction
func (r *ScheduleRepository) ReplaceAll(ctx context.Context, entries []gorm.ScheduleEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		txRepo := NewScheduleRepository(tx)
		if err := txRepo.DeleteAll(ctx); err != nil {
			return err
		}
		return txRepo.BatchInsert(ctx, entries)
	})
}

// Count returns total number of schedule rows
func (r *ScheduleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gorm.ScheduleEntry{}).Count(&count).Error
	return count, err
}
