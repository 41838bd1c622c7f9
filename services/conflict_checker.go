package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

// ConflictChecker detects overlapping confirmed reservations on a table.
type ConflictChecker struct {
	db *gorm.DB
}

func NewConflictChecker(db *gorm.DB) *ConflictChecker {
	return &ConflictChecker{db: db}
}

func (cc *ConflictChecker) WithTx(tx *gorm.DB) *ConflictChecker {
	return &ConflictChecker{db: tx}
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// HasConflict reports whether a confirmed reservation other than excludeID
// overlaps [start, start+duration) on tableID. Pass 0 to exclude nothing.
func (cc *ConflictChecker) HasConflict(ctx context.Context, tableID uint, start time.Time, durationMinutes int, excludeID uint) (bool, error) {
	if durationMinutes <= 0 {
		return false, ErrInvalidDuration
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	q := cc.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("table_id = ? AND status = ?", tableID, models.ReservationConfirmed).
		Where("starts_at < ? AND ends_at > ?", end.UTC(), start.UTC())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check conflicts on table %d: %w", tableID, err)
	}
	return count > 0, nil
}
