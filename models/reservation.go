package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationNoShow    = "no_show"
)

// DefaultReservationDuration is used when neither the caller nor the party size sets one.
const DefaultReservationDuration = 120

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Reservation struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	TableID          uint   `gorm:"not null;index:idx_reservation_window,priority:1" json:"table_id"`
	Table            Table  `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	ConfirmationCode string `gorm:"type:varchar(20);uniqueIndex" json:"confirmation_code"`

	FirstName        string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName         string `gorm:"type:varchar(100)" json:"last_name"`
	CustomerName     string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail    string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone    string `gorm:"type:varchar(50)" json:"customer_phone"`
	PhoneCountryCode string `gorm:"type:varchar(8)" json:"phone_country_code,omitempty"`

	NumberOfGuests  int       `gorm:"not null" json:"number_of_guests"`
	ReservationDate string    `gorm:"type:varchar(10);not null;index" json:"reservation_date"`
	ReservationTime string    `gorm:"type:varchar(5);not null" json:"reservation_time"`
	StartsAt        time.Time `gorm:"not null;index:idx_reservation_window,priority:3" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null;index:idx_reservation_window,priority:4" json:"ends_at"`
	Duration        int       `gorm:"not null;default:120" json:"duration"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_reservation_window,priority:2" json:"status"`

	Occasion        string `gorm:"type:varchar(50)" json:"occasion,omitempty"`
	SpecialRequests string `gorm:"type:text" json:"special_requests,omitempty"`

	RestaurantMarketing bool `gorm:"not null;default:false" json:"restaurant_marketing"`
	PlatformMarketing   bool `gorm:"not null;default:false" json:"platform_marketing"`
	SMSUpdates          bool `gorm:"not null;default:false" json:"sms_updates"`

	Synced                bool   `gorm:"not null;default:false" json:"synced"`
	ExternalReservationID string `gorm:"type:varchar(100);index" json:"external_reservation_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsValidReservationStatus reports whether s is a known reservation status.
func IsValidReservationStatus(s string) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted, ReservationNoShow:
		return true
	}
	return false
}

// CanTransition reports whether staff may move a reservation from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case ReservationPending:
		return to == ReservationConfirmed || to == ReservationCancelled
	case ReservationConfirmed:
		return to == ReservationCompleted || to == ReservationCancelled || to == ReservationNoShow
	}
	return false
}

// Window returns the half-open interval the reservation occupies on its table.
func (r *Reservation) Window() (time.Time, time.Time) {
	return r.StartsAt, r.EndsAt
}
