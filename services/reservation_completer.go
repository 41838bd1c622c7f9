package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// ReservationCompleter periodically closes confirmed reservations whose
// window has passed.
type ReservationCompleter struct {
	bookings  *BookingService
	interval  time.Duration
	loc       *time.Location
	scheduler gocron.Scheduler
	now       func() time.Time
}

func NewReservationCompleter(bookings *BookingService, interval time.Duration, loc *time.Location) *ReservationCompleter {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationCompleter{
		bookings: bookings,
		interval: interval,
		loc:      loc,
		now:      time.Now,
	}
}

func (rc *ReservationCompleter) Start() error {
	s, err := gocron.NewScheduler(gocron.WithLocation(rc.loc))
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(rc.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), rc.interval)
			defer cancel()
			rc.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	rc.scheduler = s
	s.Start()
	utils.InfoLogger.Printf("Reservation completer started (every %s)", rc.interval)
	return nil
}

func (rc *ReservationCompleter) Stop() {
	if rc.scheduler == nil {
		return
	}
	if err := rc.scheduler.Shutdown(); err != nil {
		utils.ErrorLogger.Printf("Error stopping reservation completer: %v", err)
	}
}

// RunOnce completes every ended confirmed reservation and returns how many
// were moved.
func (rc *ReservationCompleter) RunOnce(ctx context.Context) int {
	ended, err := rc.bookings.Store().ListEndedConfirmed(ctx, rc.now())
	if err != nil {
		utils.ErrorLogger.Printf("Error scanning ended reservations: %v", err)
		return 0
	}

	done := 0
	for _, res := range ended {
		if _, err := rc.bookings.UpdateStatus(ctx, res.ID, models.ReservationCompleted); err != nil {
			utils.ErrorLogger.Printf("Error completing reservation %d: %v", res.ID, err)
			continue
		}
		done++
	}
	if done > 0 {
		utils.InfoLogger.Printf("Completed %d ended reservations", done)
	}
	return done
}
