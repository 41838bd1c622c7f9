package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNoTableAvailable    = errors.New("no table is available for the requested party size, please try another time")
	ErrTableNotFound       = errors.New("table not found")
	ErrTableTooSmall       = errors.New("table capacity is smaller than the party size")
	ErrSlotConflict        = errors.New("the requested time slot is already booked for this table")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrBanquetNotFound     = errors.New("banquet booking not found")
	ErrMessageNotFound     = errors.New("contact message not found")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidDuration     = errors.New("duration must be greater than zero")
	ErrDuplicateTable      = errors.New("table number already exists")
)

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// isBookingRejection reports whether err means the requested slot cannot be
// booked, as opposed to a storage failure.
func isBookingRejection(err error) bool {
	return errors.Is(err, ErrNoTableAvailable) ||
		errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrTableTooSmall) ||
		errors.Is(err, ErrSlotConflict)
}
