package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewReservationInput is everything the store needs to persist a reservation.
// The booking flow fills in the table, window and duration.
type NewReservationInput struct {
	TableID             uint
	FirstName           string
	LastName            string
	CustomerEmail       string
	CustomerPhone       string
	PhoneCountryCode    string
	NumberOfGuests      int
	ReservationDate     string
	ReservationTime     string
	StartsAt            time.Time
	Duration            int
	Occasion            string
	SpecialRequests     string
	RestaurantMarketing bool
	PlatformMarketing   bool
	SMSUpdates          bool
}

// ReservationUpdate holds the fields an update may change. Nil means unchanged.
// The table and the id are not updatable.
type ReservationUpdate struct {
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	CustomerEmail       *string `json:"customer_email"`
	CustomerPhone       *string `json:"customer_phone"`
	PhoneCountryCode    *string `json:"phone_country_code"`
	NumberOfGuests      *int    `json:"number_of_guests"`
	ReservationDate     *string `json:"reservation_date"`
	ReservationTime     *string `json:"reservation_time"`
	Duration            *int    `json:"duration"`
	Occasion            *string `json:"occasion"`
	SpecialRequests     *string `json:"special_requests"`
	RestaurantMarketing *bool   `json:"restaurant_marketing"`
	PlatformMarketing   *bool   `json:"platform_marketing"`
	SMSUpdates          *bool   `json:"sms_updates"`

	// startsAt is resolved by the booking flow from date and time.
	startsAt *time.Time
}

type ReservationFilter struct {
	DateFrom string
	DateTo   string
	Status   string
	TableID  uint
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

// ReservationStore is the durable record of reservations.
type ReservationStore struct {
	db *gorm.DB
}

func NewReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

func (rs *ReservationStore) WithTx(tx *gorm.DB) *ReservationStore {
	return &ReservationStore{db: tx}
}

func (rs *ReservationStore) Create(ctx context.Context, in NewReservationInput) (*models.Reservation, error) {
	if in.Duration <= 0 {
		return nil, ErrInvalidDuration
	}

	var res models.Reservation
	if err := copier.Copy(&res, &in); err != nil {
		return nil, fmt.Errorf("copy reservation input: %w", err)
	}
	res.CustomerName = displayName(in.FirstName, in.LastName)
	res.StartsAt = in.StartsAt.UTC()
	res.EndsAt = res.StartsAt.Add(time.Duration(in.Duration) * time.Minute)
	res.Status = models.ReservationPending
	res.Synced = false
	res.ExternalReservationID = ""
	res.ConfirmationCode = newCode("RSV")

	if err := rs.db.WithContext(ctx).Omit(clause.Associations).Create(&res).Error; err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	return rs.GetByID(ctx, res.ID)
}

func (rs *ReservationStore) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := rs.db.WithContext(ctx).Preload("Table").First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return &res, nil
}

// Update merges the provided fields and refreshes updated_at.
func (rs *ReservationStore) Update(ctx context.Context, id uint, upd ReservationUpdate) (*models.Reservation, error) {
	res, err := rs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(res, upd)
	res.UpdatedAt = time.Now()

	if err := rs.db.WithContext(ctx).Omit(clause.Associations).Save(res).Error; err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, err)
	}
	return res, nil
}

// SetStatus moves the reservation from one status to another. The write only
// applies while the row still has status from; otherwise the current status is
// reported as ErrInvalidTransition.
func (rs *ReservationStore) SetStatus(ctx context.Context, id uint, from, to string) (*models.Reservation, error) {
	result := rs.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, fmt.Errorf("set status of reservation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		current, err := rs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}
	return rs.GetByID(ctx, id)
}

// MarkSynced records a successful mirror on the remote platform.
func (rs *ReservationStore) MarkSynced(ctx context.Context, id uint, externalID string) error {
	result := rs.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "external_reservation_id": externalID, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("mark reservation %d synced: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// Delete removes the reservation and returns what it looked like before.
func (rs *ReservationStore) Delete(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := rs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rs.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete reservation %d: %w", id, err)
	}
	return res, nil
}

// List returns one page of reservations, newest reservation date first, and the total match count.
func (rs *ReservationStore) List(ctx context.Context, f ReservationFilter, p Pagination) ([]models.Reservation, int64, error) {
	p = p.normalize()

	q := rs.db.WithContext(ctx).Model(&models.Reservation{})
	if f.DateFrom != "" {
		q = q.Where("reservation_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("reservation_date <= ?", f.DateTo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != 0 {
		q = q.Where("table_id = ?", f.TableID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	var items []models.Reservation
	err := q.Preload("Table").
		Order("reservation_date DESC").
		Order("reservation_time DESC").
		Order("id DESC").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}
	return items, total, nil
}

// ListEndedConfirmed returns confirmed reservations whose window closed before now.
func (rs *ReservationStore) ListEndedConfirmed(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	var items []models.Reservation
	err := rs.db.WithContext(ctx).
		Where("status = ? AND ends_at <= ?", models.ReservationConfirmed, now.UTC().Truncate(time.Second)).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list ended reservations: %w", err)
	}
	return items, nil
}

// CountByStatus counts reservations per status on a given date.
func (rs *ReservationStore) CountByStatus(ctx context.Context, date string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := rs.db.WithContext(ctx).Model(&models.Reservation{}).
		Select("status, COUNT(*) AS total").
		Where("reservation_date = ?", date).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count reservations by status: %w", err)
	}

	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func applyUpdate(res *models.Reservation, upd ReservationUpdate) {
	if upd.FirstName != nil {
		res.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		res.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.FirstName != nil || upd.LastName != nil {
		res.CustomerName = displayName(res.FirstName, res.LastName)
	}
	if upd.CustomerEmail != nil {
		res.CustomerEmail = strings.TrimSpace(*upd.CustomerEmail)
	}
	if upd.CustomerPhone != nil {
		res.CustomerPhone = strings.TrimSpace(*upd.CustomerPhone)
	}
	if upd.PhoneCountryCode != nil {
		res.PhoneCountryCode = strings.TrimSpace(*upd.PhoneCountryCode)
	}
	if upd.NumberOfGuests != nil {
		res.NumberOfGuests = *upd.NumberOfGuests
	}
	if upd.ReservationDate != nil {
		res.ReservationDate = *upd.ReservationDate
	}
	if upd.ReservationTime != nil {
		res.ReservationTime = *upd.ReservationTime
	}
	if upd.Duration != nil {
		res.Duration = *upd.Duration
	}
	if upd.startsAt != nil {
		res.StartsAt = upd.startsAt.UTC()
	}
	res.EndsAt = res.StartsAt.Add(time.Duration(res.Duration) * time.Minute)
	if upd.Occasion != nil {
		res.Occasion = *upd.Occasion
	}
	if upd.SpecialRequests != nil {
		res.SpecialRequests = *upd.SpecialRequests
	}
	if upd.RestaurantMarketing != nil {
		res.RestaurantMarketing = *upd.RestaurantMarketing
	}
	if upd.PlatformMarketing != nil {
		res.PlatformMarketing = *upd.PlatformMarketing
	}
	if upd.SMSUpdates != nil {
		res.SMSUpdates = *upd.SMSUpdates
	}
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// newCode builds a short human-facing reference such as RSV-1A2B3C4D.
func newCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
