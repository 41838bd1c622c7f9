package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(18, 0), at(20, 0), at(18, 0), at(20, 0), true},
		{"second starts inside first", at(18, 0), at(20, 0), at(19, 0), at(21, 0), true},
		{"second contains first", at(18, 30), at(19, 0), at(18, 0), at(20, 0), true},
		{"back to back", at(18, 0), at(20, 0), at(20, 0), at(22, 0), false},
		{"back to back reversed", at(20, 0), at(22, 0), at(18, 0), at(20, 0), false},
		{"disjoint", at(12, 0), at(13, 0), at(18, 0), at(20, 0), false},
		{"one minute overlap", at(18, 0), at(20, 0), at(19, 59), at(21, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestHasConflict(t *testing.T) {
	db := newTestDB(t)
	tables := seedTables(t, db, 4, 4)
	store := NewReservationStore(db)
	checker := NewConflictChecker(db)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	newRes := func(tableID uint, startsAt time.Time, status string) *models.Reservation {
		res, err := store.Create(ctx, NewReservationInput{
			TableID:         tableID,
			FirstName:       "Grace",
			CustomerEmail:   "grace@example.com",
			NumberOfGuests:  2,
			ReservationDate: startsAt.Format(models.DateLayout),
			ReservationTime: startsAt.Format(models.TimeLayout),
			StartsAt:        startsAt,
			Duration:        120,
		})
		require.NoError(t, err)
		if status != models.ReservationPending {
			res, err = store.SetStatus(ctx, res.ID, models.ReservationPending, status)
			require.NoError(t, err)
		}
		return res
	}

	confirmed := newRes(tables[0].ID, start, models.ReservationConfirmed)
	newRes(tables[0].ID, start.Add(4*time.Hour), models.ReservationPending)
	newRes(tables[0].ID, start.Add(-4*time.Hour), models.ReservationCancelled)

	tests := []struct {
		name     string
		tableID  uint
		start    time.Time
		duration int
		exclude  uint
		want     bool
	}{
		{"same window", tables[0].ID, start, 120, 0, true},
		{"starts half way", tables[0].ID, start.Add(time.Hour), 120, 0, true},
		{"ends exactly at start", tables[0].ID, start.Add(-2 * time.Hour), 120, 0, false},
		{"starts exactly at end", tables[0].ID, start.Add(2 * time.Hour), 90, 0, false},
		{"pending reservations do not block", tables[0].ID, start.Add(4 * time.Hour), 120, 0, false},
		{"cancelled reservations do not block", tables[0].ID, start.Add(-4 * time.Hour), 120, 0, false},
		{"other table", tables[1].ID, start, 120, 0, false},
		{"own reservation excluded", tables[0].ID, start, 120, confirmed.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.HasConflict(ctx, tt.tableID, tt.start, tt.duration, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := checker.HasConflict(ctx, tables[0].ID, start, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestHasConflict_NonUTCInput(t *testing.T) {
	db := newTestDB(t)
	tables := seedTables(t, db, 4)
	store := NewReservationStore(db)
	ctx := context.Background()

	jakarta := time.FixedZone("WIB", 7*3600)
	local := time.Date(2025, 6, 1, 19, 0, 0, 0, jakarta)
	res, err := store.Create(ctx, NewReservationInput{
		TableID: tables[0].ID, FirstName: "Ken", CustomerEmail: "ken@example.com",
		NumberOfGuests: 2, ReservationDate: "2025-06-01", ReservationTime: "19:00",
		StartsAt: local, Duration: 120,
	})
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, res.ID, models.ReservationPending, models.ReservationConfirmed)
	require.NoError(t, err)

	conflict, err := NewConflictChecker(db).HasConflict(ctx, tables[0].ID, local.Add(30*time.Minute), 60, 0)
	require.NoError(t, err)
	assert.True(t, conflict)
}
