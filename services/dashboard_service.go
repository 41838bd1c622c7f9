package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

type DashboardStats struct {
	Date             string           `json:"date"`
	ReservationsBy   map[string]int64 `json:"reservations_by_status"`
	ReservationTotal int64            `json:"reservation_total"`
	GuestsExpected   int64            `json:"guests_expected"`
	PendingBanquets  int64            `json:"pending_banquets"`
	UnreadMessages   int64            `json:"unread_messages"`
	TablesByStatus   map[string]int64 `json:"tables_by_status"`
}

type DashboardService struct {
	db       *gorm.DB
	store    *ReservationStore
	banquets *BanquetService
	contacts *ContactService
}

func NewDashboardService(db *gorm.DB, store *ReservationStore, banquets *BanquetService, contacts *ContactService) *DashboardService {
	return &DashboardService{db: db, store: store, banquets: banquets, contacts: contacts}
}

// Stats summarises one day of reservations plus the open admin work.
func (ds *DashboardService) Stats(ctx context.Context, date string) (*DashboardStats, error) {
	byStatus, err := ds.store.CountByStatus(ctx, date)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Date: date, ReservationsBy: byStatus, TablesByStatus: map[string]int64{}}
	for _, n := range byStatus {
		stats.ReservationTotal += n
	}

	var guests struct{ Total int64 }
	err = ds.db.WithContext(ctx).Model(&models.Reservation{}).
		Select("COALESCE(SUM(number_of_guests), 0) AS total").
		Where("reservation_date = ? AND status IN ?", date, []string{models.ReservationPending, models.ReservationConfirmed}).
		Scan(&guests).Error
	if err != nil {
		return nil, fmt.Errorf("sum expected guests: %w", err)
	}
	stats.GuestsExpected = guests.Total

	if stats.PendingBanquets, err = ds.banquets.CountPending(ctx); err != nil {
		return nil, fmt.Errorf("count pending banquets: %w", err)
	}
	if stats.UnreadMessages, err = ds.contacts.CountUnread(ctx); err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}

	var rows []struct {
		Status string
		Total  int64
	}
	err = ds.db.WithContext(ctx).Model(&models.Table{}).
		Select("status, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tables by status: %w", err)
	}
	for _, r := range rows {
		stats.TablesByStatus[r.Status] = r.Total
	}
	return stats, nil
}
