package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRequest is a public table-booking submission.
type BookingRequest struct {
	TableID             *uint  `json:"table_id"`
	FirstName           string `json:"first_name" validate:"required,max=100"`
	LastName            string `json:"last_name" validate:"max=100"`
	Email               string `json:"email" validate:"required,email,max=255"`
	Phone               string `json:"phone" validate:"omitempty,max=30"`
	PhoneCountryCode    string `json:"phone_country_code" validate:"omitempty,max=8"`
	PartySize           int    `json:"party_size" validate:"required,min=1,max=50"`
	Date                string `json:"date" validate:"required"`
	Time                string `json:"time" validate:"required"`
	Duration            int    `json:"duration" validate:"omitempty,min=1,max=720"`
	Occasion            string `json:"occasion" validate:"omitempty,max=50"`
	SpecialRequests     string `json:"special_requests" validate:"omitempty,max=2000"`
	RestaurantMarketing bool   `json:"restaurant_marketing"`
	PlatformMarketing   bool   `json:"platform_marketing"`
	SMSUpdates          bool   `json:"sms_updates"`
}

// AvailabilityQuery asks whether a booking would currently succeed.
type AvailabilityQuery struct {
	TableID   *uint  `json:"table_id"`
	PartySize int    `json:"party_size" validate:"required,min=1,max=50"`
	Date      string `json:"date" validate:"required"`
	Time      string `json:"time" validate:"required"`
	Duration  int    `json:"duration" validate:"omitempty,min=1,max=720"`
}

type Availability struct {
	Available bool          `json:"available"`
	Table     *models.Table `json:"table,omitempty"`
	Duration  int           `json:"duration"`
	StartsAt  time.Time     `json:"starts_at"`
	EndsAt    time.Time     `json:"ends_at"`
	Reason    string        `json:"reason,omitempty"`
}

type BookingOptions struct {
	Remote          RemoteBookingClient
	RemoteTimeout   time.Duration
	Notifier        Notifier
	Events          EventPublisher
	AdminRecipients []string
	Location        *time.Location
}

// BookingService coordinates table bookings: validation, table assignment,
// conflict checks, persistence and best-effort side effects.
type BookingService struct {
	db       *gorm.DB
	catalog  *TableCatalog
	checker  *ConflictChecker
	assigner *TableAssigner
	store    *ReservationStore
	remote   *RemoteSyncAdapter

	notifier        Notifier
	events          EventPublisher
	adminRecipients []string
	loc             *time.Location

	now        func() time.Time
	background func(func())

	// mu serializes assign+check+insert inside this process. Across
	// processes the table row lock taken in the transaction does the same.
	mu sync.Mutex
}

func NewBookingService(db *gorm.DB, opts BookingOptions) *BookingService {
	catalog := NewTableCatalog(db)
	store := NewReservationStore(db)

	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.Events == nil {
		opts.Events = NoopPublisher{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &BookingService{
		db:              db,
		catalog:         catalog,
		checker:         NewConflictChecker(db),
		assigner:        NewTableAssigner(catalog),
		store:           store,
		remote:          NewRemoteSyncAdapter(opts.Remote, store, opts.RemoteTimeout),
		notifier:        opts.Notifier,
		events:          opts.Events,
		adminRecipients: opts.AdminRecipients,
		loc:             opts.Location,
		now:             time.Now,
		background:      func(f func()) { go f() },
	}
}

// Remote exposes the sync adapter, e.g. for the booking widget URL.
func (s *BookingService) Remote() *RemoteSyncAdapter {
	return s.remote
}

func (s *BookingService) Store() *ReservationStore {
	return s.store
}

// Book validates the request, picks a table, rejects overlapping slots and
// stores the reservation. Remote mirroring never fails the booking.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	start, err := s.validateBooking(&req)
	if err != nil {
		return nil, err
	}
	duration := InferDuration(req.PartySize, req.Duration)

	var created *models.Reservation
	err = s.withBookingLock(ctx, func(tx *gorm.DB) error {
		table, err := s.pickTable(ctx, tx, req.TableID, req.PartySize, start, duration, true)
		if err != nil {
			return err
		}

		created, err = s.store.WithTx(tx).Create(ctx, NewReservationInput{
			TableID:             table.ID,
			FirstName:           req.FirstName,
			LastName:            req.LastName,
			CustomerEmail:       req.Email,
			CustomerPhone:       req.Phone,
			PhoneCountryCode:    req.PhoneCountryCode,
			NumberOfGuests:      req.PartySize,
			ReservationDate:     req.Date,
			ReservationTime:     req.Time,
			StartsAt:            start,
			Duration:            duration,
			Occasion:            req.Occasion,
			SpecialRequests:     req.SpecialRequests,
			RestaurantMarketing: req.RestaurantMarketing,
			PlatformMarketing:   req.PlatformMarketing,
			SMSUpdates:          req.SMSUpdates,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id":   created.ID,
		"table":            created.Table.Number,
		"date":             created.ReservationDate,
		"reservation_time": created.ReservationTime,
		"guests":           created.NumberOfGuests,
	}).Info("Reservation created")

	if s.remote.IsConfigured() {
		logSync("create", created.ID, s.remote.SyncCreated(ctx, created))
	}

	s.events.Publish(EventReservationCreated, created)
	s.notifyReservation(created, "Your reservation request has been received", true)

	return created, nil
}

// CheckAvailability applies the same assignment and overlap rule as Book
// without writing anything.
func (s *BookingService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*Availability, error) {
	verr := validateStruct(q)
	var start time.Time
	if verr.Fields["date"] == "" && verr.Fields["time"] == "" {
		start, _ = parseSlot(verr, "date", q.Date, "time", q.Time, s.loc)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	duration := InferDuration(q.PartySize, q.Duration)
	out := &Availability{
		Duration: duration,
		StartsAt: start,
		EndsAt:   start.Add(time.Duration(duration) * time.Minute),
	}

	table, err := s.pickTable(ctx, s.db, q.TableID, q.PartySize, start, duration, false)
	switch {
	case err == nil:
		out.Available = true
		out.Table = table
	case isBookingRejection(err):
		out.Reason = err.Error()
	default:
		return nil, err
	}
	return out, nil
}

// Update changes reservation fields. The local write is authoritative;
// a synced reservation is mirrored afterwards on a best-effort basis.
func (s *BookingService) Update(ctx context.Context, id uint, upd ReservationUpdate) (*models.Reservation, error) {
	if err := s.validateUpdate(&upd); err != nil {
		return nil, err
	}

	var updated *models.Reservation
	err := s.withBookingLock(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		current, err := store.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.ReservationDate != nil || upd.ReservationTime != nil {
			date, clock := current.ReservationDate, current.ReservationTime
			if upd.ReservationDate != nil {
				date = *upd.ReservationDate
			}
			if upd.ReservationTime != nil {
				clock = *upd.ReservationTime
			}
			verr := &ValidationError{}
			start, ok := parseSlot(verr, "reservation_date", date, "reservation_time", clock, s.loc)
			if !ok {
				return verr
			}
			upd.startsAt = &start
		}

		guests := current.NumberOfGuests
		if upd.NumberOfGuests != nil {
			guests = *upd.NumberOfGuests
		}
		if guests > current.Table.Capacity {
			return ErrTableTooSmall
		}

		start := current.StartsAt
		if upd.startsAt != nil {
			start = *upd.startsAt
		}
		duration := current.Duration
		if upd.Duration != nil {
			duration = *upd.Duration
		}
		windowChanged := !start.Equal(current.StartsAt) || duration != current.Duration

		if current.Status == models.ReservationConfirmed && windowChanged {
			if err := lockTable(tx, current.TableID); err != nil {
				return err
			}
			conflict, err := s.checker.WithTx(tx).HasConflict(ctx, current.TableID, start, duration, current.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrSlotConflict
			}
		}

		updated, err = store.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}

	if updated.Synced {
		logSync("update", updated.ID, s.remote.UpdateRemote(ctx, updated.ExternalReservationID, upd.remoteFields()))
	}
	s.events.Publish(EventReservationUpdated, updated)
	return updated, nil
}

// Cancel cancels a pending or confirmed reservation. Cancelling an already
// cancelled reservation returns it unchanged.
func (s *BookingService) Cancel(ctx context.Context, id uint) (*models.Reservation, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.ReservationCancelled {
		return current, nil
	}
	if !models.CanTransition(current.Status, models.ReservationCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, models.ReservationCancelled)
	}

	cancelled, err := s.store.SetStatus(ctx, id, current.Status, models.ReservationCancelled)
	if err != nil {
		return nil, err
	}

	if cancelled.Synced {
		logSync("cancel", cancelled.ID, s.remote.CancelRemote(ctx, cancelled.ExternalReservationID))
	}

	utils.InfoLogger.WithField("reservation_id", cancelled.ID).Info("Reservation cancelled")
	s.events.Publish(EventReservationCancelled, cancelled)
	s.notifyReservation(cancelled, "Your reservation has been cancelled", false)
	return cancelled, nil
}

// UpdateStatus moves a reservation through its lifecycle on behalf of staff.
// Confirming re-checks the window so two pending bookings cannot both be confirmed.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Reservation, error) {
	status = strings.TrimSpace(strings.ToLower(status))
	if !models.IsValidReservationStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{
			"status": "must be one of pending, confirmed, cancelled, completed, no_show",
		}}
	}
	if status == models.ReservationCancelled {
		return s.Cancel(ctx, id)
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !models.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	var updated *models.Reservation
	if status == models.ReservationConfirmed {
		err = s.withBookingLock(ctx, func(tx *gorm.DB) error {
			if err := lockTable(tx, current.TableID); err != nil {
				return err
			}
			conflict, err := s.checker.WithTx(tx).HasConflict(ctx, current.TableID, current.StartsAt, current.Duration, current.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrSlotConflict
			}
			updated, err = s.store.WithTx(tx).SetStatus(ctx, id, current.Status, status)
			return err
		})
	} else {
		updated, err = s.store.SetStatus(ctx, id, current.Status, status)
	}
	if err != nil {
		return nil, err
	}

	if updated.Synced {
		logSync("update", updated.ID, s.remote.UpdateRemote(ctx, updated.ExternalReservationID, map[string]interface{}{"status": status}))
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": updated.ID,
		"from":           current.Status,
		"to":             status,
	}).Info("Reservation status changed")
	s.events.Publish(EventReservationStatusChanged, updated)
	if status == models.ReservationConfirmed {
		s.notifyReservation(updated, "Your reservation is confirmed", false)
	}
	return updated, nil
}

// Delete removes a reservation. A synced reservation that was still live is
// cancelled on the remote platform.
func (s *BookingService) Delete(ctx context.Context, id uint) (*models.Reservation, error) {
	snapshot, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot.Synced && snapshot.Status != models.ReservationCancelled {
		logSync("cancel", snapshot.ID, s.remote.CancelRemote(ctx, snapshot.ExternalReservationID))
	}

	utils.InfoLogger.WithField("reservation_id", snapshot.ID).Info("Reservation deleted")
	s.events.Publish(EventReservationDeleted, map[string]interface{}{"id": snapshot.ID})
	return snapshot, nil
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.store.GetByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context, f ReservationFilter, p Pagination) ([]models.Reservation, int64, error) {
	return s.store.List(ctx, f, p)
}

// pickTable returns the first candidate table free for the window. With
// lock, the row of the chosen table is locked for the rest of tx.
func (s *BookingService) pickTable(ctx context.Context, tx *gorm.DB, explicitID *uint, partySize int, start time.Time, duration int, lock bool) (*models.Table, error) {
	candidates, err := s.assigner.WithCatalog(s.catalog.WithTx(tx)).Candidates(ctx, explicitID, partySize)
	if err != nil {
		return nil, err
	}

	checker := s.checker.WithTx(tx)
	for i := range candidates {
		table := &candidates[i]
		if lock {
			if err := lockTable(tx, table.ID); err != nil {
				return nil, err
			}
		}
		conflict, err := checker.HasConflict(ctx, table.ID, start, duration, 0)
		if err != nil {
			return nil, err
		}
		if !conflict {
			return table, nil
		}
	}
	return nil, ErrSlotConflict
}

func (s *BookingService) withBookingLock(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(fn)
}

// lockTable takes a row lock on the table for the rest of the transaction.
// SQLite has no row locks; its single writer gives the same guarantee.
func lockTable(tx *gorm.DB, tableID uint) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	var table models.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&table, tableID).Error
	if err != nil {
		return fmt.Errorf("lock table %d: %w", tableID, err)
	}
	return nil
}

func (s *BookingService) validateBooking(req *BookingRequest) (time.Time, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	verr := validateStruct(*req)
	var start time.Time
	if verr.Fields["date"] == "" && verr.Fields["time"] == "" {
		var ok bool
		start, ok = parseSlot(verr, "date", req.Date, "time", req.Time, s.loc)
		if ok && start.Before(s.now()) {
			verr.add("date", "must not be in the past")
		}
	}
	return start, verr.orNil()
}

func (s *BookingService) validateUpdate(upd *ReservationUpdate) error {
	verr := &ValidationError{}
	if upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "" {
		verr.add("first_name", "is required")
	}
	if upd.CustomerEmail != nil {
		if err := validate.Var(strings.TrimSpace(*upd.CustomerEmail), "required,email"); err != nil {
			verr.add("customer_email", "must be a valid email address")
		}
	}
	if upd.NumberOfGuests != nil && *upd.NumberOfGuests < 1 {
		verr.add("number_of_guests", "must be at least 1")
	}
	if upd.Duration != nil && *upd.Duration <= 0 {
		verr.add("duration", ErrInvalidDuration.Error())
	}
	return verr.orNil()
}

func (s *BookingService) notifyReservation(res *models.Reservation, intro string, alertAdmins bool) {
	snapshot := *res
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body, err := renderReservationEmail(intro, &snapshot)
		if err != nil {
			utils.ErrorLogger.Printf("Error rendering reservation email: %v", err)
			return
		}
		subject := fmt.Sprintf("Reservation %s: %s", snapshot.ConfirmationCode, snapshot.Status)
		if err := s.notifier.Send(ctx, []string{snapshot.CustomerEmail}, subject, body); err != nil {
			utils.ErrorLogger.WithField("reservation_id", snapshot.ID).Warnf("Customer email failed: %v", err)
		}
		if alertAdmins && len(s.adminRecipients) > 0 {
			adminSubject := fmt.Sprintf("New reservation %s for %s %s", snapshot.ConfirmationCode, snapshot.ReservationDate, snapshot.ReservationTime)
			if err := s.notifier.Send(ctx, s.adminRecipients, adminSubject, body); err != nil {
				utils.ErrorLogger.WithField("reservation_id", snapshot.ID).Warnf("Admin email failed: %v", err)
			}
		}
	})
}

func (u ReservationUpdate) remoteFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.FirstName != nil {
		fields["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		fields["last_name"] = *u.LastName
	}
	if u.CustomerEmail != nil {
		fields["email"] = *u.CustomerEmail
	}
	if u.CustomerPhone != nil {
		fields["phone"] = *u.CustomerPhone
	}
	if u.NumberOfGuests != nil {
		fields["party_size"] = *u.NumberOfGuests
	}
	if u.ReservationDate != nil {
		fields["date"] = *u.ReservationDate
	}
	if u.ReservationTime != nil {
		fields["time"] = *u.ReservationTime
	}
	if u.Duration != nil {
		fields["duration_minutes"] = *u.Duration
	}
	if u.SpecialRequests != nil {
		fields["notes"] = *u.SpecialRequests
	}
	return fields
}
