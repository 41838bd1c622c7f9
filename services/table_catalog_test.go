package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

func TestTableCatalog_Create(t *testing.T) {
	db := newTestDB(t)
	catalog := NewTableCatalog(db)
	ctx := context.Background()

	table, err := catalog.Create(ctx, NewTableInput{Number: 7, Capacity: 4, Location: " patio "})
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
	assert.True(t, table.IsActive)
	assert.Equal(t, "patio", table.Location)

	_, err = catalog.Create(ctx, NewTableInput{Number: 7, Capacity: 2})
	assert.ErrorIs(t, err, ErrDuplicateTable)

	_, err = catalog.Create(ctx, NewTableInput{Number: 0, Capacity: 0, Status: "broken"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "number")
	assert.Contains(t, verr.Fields, "capacity")
	assert.Contains(t, verr.Fields, "status")
}

func TestTableCatalog_StatusAndDeactivate(t *testing.T) {
	db := newTestDB(t)
	tables := seedTables(t, db, 2, 4)
	catalog := NewTableCatalog(db)
	ctx := context.Background()

	updated, err := catalog.UpdateStatus(ctx, tables[0].ID, models.TableStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusMaintenance, updated.Status)

	_, err = catalog.UpdateStatus(ctx, tables[0].ID, "dirty")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = catalog.UpdateStatus(ctx, 999, models.TableStatusAvailable)
	assert.ErrorIs(t, err, ErrTableNotFound)

	candidates, err := catalog.FindCandidates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 2, candidates[0].Number)

	_, err = catalog.Deactivate(ctx, tables[1].ID)
	require.NoError(t, err)

	active, err := catalog.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := catalog.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	candidates, err = catalog.FindCandidates(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestTableCatalog_CreateRacingSameNumber(t *testing.T) {
	db := newTestDB(t)
	catalog := NewTableCatalog(db)
	ctx := context.Background()

	// Another writer inserts number 9 after the duplicate check has run.
	var once sync.Once
	err := db.Callback().Query().After("gorm:query").Register("test:concurrent_table_create", func(tx *gorm.DB) {
		if tx.Statement.Table != "tables" {
			return
		}
		once.Do(func() {
			rival := models.Table{Number: 9, Capacity: 2, Status: models.TableStatusAvailable, IsActive: true}
			require.NoError(t, db.Create(&rival).Error)
		})
	})
	require.NoError(t, err)

	_, err = catalog.Create(ctx, NewTableInput{Number: 9, Capacity: 4})
	assert.ErrorIs(t, err, ErrDuplicateTable)

	var count int64
	require.NoError(t, db.Model(&models.Table{}).Where("number = ?", 9).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
