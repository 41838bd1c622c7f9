package services

import (
	"context"

	"github.com/yeremiapane/restaurant-booking/models"
)

// InferDuration returns the seating time in minutes for a party.
// An explicit positive duration always wins.
func InferDuration(partySize, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	switch {
	case partySize <= 4:
		return models.DefaultReservationDuration
	case partySize <= 6:
		return 150
	default:
		return 180
	}
}

// TableAssigner resolves the table a booking will use.
type TableAssigner struct {
	catalog *TableCatalog
}

func NewTableAssigner(catalog *TableCatalog) *TableAssigner {
	return &TableAssigner{catalog: catalog}
}

func (ta *TableAssigner) WithCatalog(catalog *TableCatalog) *TableAssigner {
	return &TableAssigner{catalog: catalog}
}

// Assign returns the explicit table when one is given, otherwise the
// smallest available table that fits the party.
func (ta *TableAssigner) Assign(ctx context.Context, explicitTableID *uint, partySize int) (*models.Table, error) {
	tables, err := ta.Candidates(ctx, explicitTableID, partySize)
	if err != nil {
		return nil, err
	}
	return &tables[0], nil
}

// Candidates returns the tables a booking may use in preference order. The
// slice is never empty when err is nil. An explicit table is validated
// against the party size and is the only candidate.
func (ta *TableAssigner) Candidates(ctx context.Context, explicitTableID *uint, partySize int) ([]models.Table, error) {
	if explicitTableID != nil {
		table, err := ta.catalog.GetByID(ctx, *explicitTableID)
		if err != nil {
			return nil, err
		}
		if !table.IsActive {
			return nil, ErrTableNotFound
		}
		if table.Capacity < partySize {
			return nil, ErrTableTooSmall
		}
		return []models.Table{*table}, nil
	}

	candidates, err := ta.catalog.FindCandidates(ctx, partySize)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoTableAvailable
	}
	return candidates, nil
}
