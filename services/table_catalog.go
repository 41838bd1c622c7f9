package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

// TableCatalog is the registry of physical tables.
type TableCatalog struct {
	db *gorm.DB
}

func NewTableCatalog(db *gorm.DB) *TableCatalog {
	return &TableCatalog{db: db}
}

// WithTx returns a catalog bound to the given transaction.
func (tc *TableCatalog) WithTx(tx *gorm.DB) *TableCatalog {
	return &TableCatalog{db: tx}
}

// FindCandidates lists available, active tables seating at least minCapacity,
// smallest first. Ties are broken by table number.
func (tc *TableCatalog) FindCandidates(ctx context.Context, minCapacity int) ([]models.Table, error) {
	var tables []models.Table
	err := tc.db.WithContext(ctx).
		Where("status = ? AND is_active = ? AND capacity >= ?", models.TableStatusAvailable, true, minCapacity).
		Order("capacity ASC").
		Order("number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("find candidate tables: %w", err)
	}
	return tables, nil
}

func (tc *TableCatalog) GetByID(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := tc.db.WithContext(ctx).First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table %d: %w", id, err)
	}
	return &table, nil
}

// List returns tables ordered by number. Inactive tables are hidden unless requested.
func (tc *TableCatalog) List(ctx context.Context, includeInactive bool) ([]models.Table, error) {
	var tables []models.Table
	q := tc.db.WithContext(ctx).Order("number ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

type NewTableInput struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func (tc *TableCatalog) Create(ctx context.Context, in NewTableInput) (*models.Table, error) {
	verr := &ValidationError{}
	if in.Number < 1 {
		verr.add("number", "must be a positive integer")
	}
	if in.Capacity < 1 {
		verr.add("capacity", "must be at least 1")
	}
	if in.Status == "" {
		in.Status = models.TableStatusAvailable
	}
	if !models.IsValidTableStatus(in.Status) {
		verr.add("status", "must be one of available, occupied, maintenance, reserved")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var count int64
	if err := tc.db.WithContext(ctx).Model(&models.Table{}).Where("number = ?", in.Number).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check table number: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateTable
	}

	table := models.Table{
		Number:   in.Number,
		Capacity: in.Capacity,
		Location: strings.TrimSpace(in.Location),
		Status:   in.Status,
		IsActive: true,
	}
	if err := tc.db.WithContext(ctx).Create(&table).Error; err != nil {
		// A concurrent create can take the number between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTable
		}
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &table, nil
}

func (tc *TableCatalog) UpdateStatus(ctx context.Context, id uint, status string) (*models.Table, error) {
	if !models.IsValidTableStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "must be one of available, occupied, maintenance, reserved"}}
	}
	table, err := tc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table.Status = status
	if err := tc.db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, fmt.Errorf("update table %d: %w", id, err)
	}
	return table, nil
}

// Deactivate hides a table from assignment. Tables are never hard-deleted
// because reservations keep referencing them.
func (tc *TableCatalog) Deactivate(ctx context.Context, id uint) (*models.Table, error) {
	table, err := tc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table.IsActive = false
	if err := tc.db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, fmt.Errorf("deactivate table %d: %w", id, err)
	}
	return table, nil
}
