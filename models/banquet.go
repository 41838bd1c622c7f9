package models

import "time"

const (
	EventBirthday   = "birthday"
	EventWedding    = "wedding"
	EventMeeting    = "meeting"
	EventConference = "conference"
	EventCorporate  = "corporate"
	EventPrivate    = "private"
)

var EventTypes = []string{EventBirthday, EventWedding, EventMeeting, EventConference, EventCorporate, EventPrivate}

const (
	BanquetPending   = "pending"
	BanquetConfirmed = "confirmed"
	BanquetCancelled = "cancelled"
	BanquetCompleted = "completed"
	BanquetNoShow    = "no_show"
)

func IsValidBanquetStatus(s string) bool {
	switch s {
	case BanquetPending, BanquetConfirmed, BanquetCancelled, BanquetCompleted, BanquetNoShow:
		return true
	}
	return false
}

// CanBanquetTransition reports whether staff may move an event booking from
// one status to another. Cancelled, completed and no-show bookings are final.
func CanBanquetTransition(from, to string) bool {
	switch from {
	case BanquetPending:
		return to == BanquetConfirmed || to == BanquetCancelled
	case BanquetConfirmed:
		return to == BanquetCompleted || to == BanquetCancelled || to == BanquetNoShow
	}
	return false
}

// BanquetBooking books the whole hall for a private event. It has no table
// assignment and is not checked for overlaps.
type BanquetBooking struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReferenceCode string `gorm:"type:varchar(20);uniqueIndex" json:"reference_code"`

	FirstName     string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string `gorm:"type:varchar(100)" json:"last_name"`
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(50)" json:"customer_phone"`

	EventType       string   `gorm:"type:varchar(20);not null" json:"event_type"`
	EventDate       string   `gorm:"type:varchar(10);not null;index" json:"event_date"`
	StartTime       string   `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string   `gorm:"type:varchar(5);not null" json:"end_time"`
	GuestCount      int      `gorm:"not null" json:"guest_count"`
	Budget          *float64 `json:"budget,omitempty"`
	SpecialRequests string   `gorm:"type:text" json:"special_requests,omitempty"`
	Status          string   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	SheetRowRef string `gorm:"type:varchar(100)" json:"sheet_row_ref,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
