package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type BanquetRequest struct {
	FirstName       string   `json:"first_name" validate:"required,max=100"`
	LastName        string   `json:"last_name" validate:"max=100"`
	Email           string   `json:"email" validate:"required,email,max=255"`
	Phone           string   `json:"phone" validate:"required,max=30"`
	EventType       string   `json:"event_type" validate:"required,oneof=birthday wedding meeting conference corporate private"`
	EventDate       string   `json:"event_date" validate:"required"`
	StartTime       string   `json:"start_time" validate:"required"`
	EndTime         string   `json:"end_time" validate:"required"`
	GuestCount      int      `json:"guest_count" validate:"required,min=1,max=1000"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	SpecialRequests string   `json:"special_requests" validate:"omitempty,max=2000"`
}

type BanquetOptions struct {
	Sheets          SpreadsheetClient
	SheetID         string
	Notifier        Notifier
	Events          EventPublisher
	AdminRecipients []string
	Location        *time.Location
}

// BanquetService handles whole-hall event bookings. Every booking is mirrored
// as a row of the events spreadsheet when one is configured.
type BanquetService struct {
	db              *gorm.DB
	sheets          SpreadsheetClient
	sheetID         string
	notifier        Notifier
	events          EventPublisher
	adminRecipients []string
	loc             *time.Location

	now        func() time.Time
	background func(func())
}

func NewBanquetService(db *gorm.DB, opts BanquetOptions) *BanquetService {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.Events == nil {
		opts.Events = NoopPublisher{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &BanquetService{
		db:              db,
		sheets:          opts.Sheets,
		sheetID:         opts.SheetID,
		notifier:        opts.Notifier,
		events:          opts.Events,
		adminRecipients: opts.AdminRecipients,
		loc:             opts.Location,
		now:             time.Now,
		background:      func(f func()) { go f() },
	}
}

func (s *BanquetService) Create(ctx context.Context, req BanquetRequest) (*models.BanquetBooking, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.EventType = strings.ToLower(strings.TrimSpace(req.EventType))
	if err := s.validate(req); err != nil {
		return nil, err
	}

	var b models.BanquetBooking
	if err := copier.Copy(&b, &req); err != nil {
		return nil, fmt.Errorf("copy banquet request: %w", err)
	}
	b.CustomerName = displayName(req.FirstName, req.LastName)
	b.CustomerEmail = req.Email
	b.CustomerPhone = req.Phone
	b.Status = models.BanquetPending
	b.ReferenceCode = newCode("BQT")

	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, fmt.Errorf("create banquet booking: %w", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"banquet_id": b.ID,
		"event_type": b.EventType,
		"event_date": b.EventDate,
		"guests":     b.GuestCount,
	}).Info("Banquet booking created")

	s.appendSheetRow(ctx, &b)
	s.events.Publish(EventBanquetCreated, &b)
	s.notify(&b, "Your event request has been received", true)
	return &b, nil
}

func (s *BanquetService) GetByID(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	var b models.BanquetBooking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBanquetNotFound
		}
		return nil, fmt.Errorf("get banquet booking %d: %w", id, err)
	}
	return &b, nil
}

// List returns banquet bookings, soonest event first.
func (s *BanquetService) List(ctx context.Context, status string, p Pagination) ([]models.BanquetBooking, int64, error) {
	p = p.normalize()
	q := s.db.WithContext(ctx).Model(&models.BanquetBooking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count banquet bookings: %w", err)
	}

	var items []models.BanquetBooking
	err := q.Order("event_date ASC").Order("start_time ASC").Order("id ASC").
		Offset(p.offset()).Limit(p.Limit).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list banquet bookings: %w", err)
	}
	return items, total, nil
}

func (s *BanquetService) UpdateStatus(ctx context.Context, id uint, status string) (*models.BanquetBooking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidBanquetStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{
			"status": "must be one of pending, confirmed, cancelled, completed, no_show",
		}}
	}

	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == status {
		return b, nil
	}
	if !models.CanBanquetTransition(b.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
	}

	from := b.Status
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.BanquetBooking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("update banquet booking %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	b.Status = status
	b.UpdatedAt = now

	utils.InfoLogger.WithFields(logrus.Fields{
		"banquet_id": b.ID,
		"from":       from,
		"to":         status,
	}).Info("Banquet status changed")

	s.updateSheetRow(ctx, b)
	s.events.Publish(EventBanquetStatusChanged, b)
	if status == models.BanquetConfirmed || status == models.BanquetCancelled {
		s.notify(b, "Your event booking is now "+status, false)
	}
	return b, nil
}

func (s *BanquetService) Delete(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.BanquetBooking{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete banquet booking %d: %w", id, err)
	}
	utils.InfoLogger.WithField("banquet_id", id).Info("Banquet booking deleted")
	return b, nil
}

// CountPending is used by the dashboard.
func (s *BanquetService) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.BanquetBooking{}).
		Where("status = ?", models.BanquetPending).Count(&n).Error
	return n, err
}

func (s *BanquetService) validate(req BanquetRequest) error {
	verr := validateStruct(req)
	if verr.Fields["event_date"] != "" {
		return verr.orNil()
	}

	if verr.Fields["start_time"] == "" {
		if start, ok := parseSlot(verr, "event_date", req.EventDate, "start_time", req.StartTime, s.loc); ok {
			today := s.now().In(s.loc).Format(models.DateLayout)
			if start.Format(models.DateLayout) < today {
				verr.add("event_date", "must not be in the past")
			}
		}
	}
	if verr.Fields["end_time"] == "" {
		if _, err := time.Parse(models.TimeLayout, req.EndTime); err != nil {
			verr.add("end_time", "must be a time in HH:MM format")
		} else if verr.Fields["start_time"] == "" && req.EndTime <= req.StartTime {
			verr.add("end_time", "must be after start_time")
		}
	}
	return verr.orNil()
}

func sheetValues(b *models.BanquetBooking) []string {
	budget := ""
	if b.Budget != nil {
		budget = strconv.FormatFloat(*b.Budget, 'f', 2, 64)
	}
	return []string{
		b.ReferenceCode,
		b.CreatedAt.UTC().Format(time.RFC3339),
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.EventType,
		b.EventDate,
		b.StartTime,
		b.EndTime,
		strconv.Itoa(b.GuestCount),
		budget,
		b.SpecialRequests,
		b.Status,
	}
}

func (s *BanquetService) appendSheetRow(ctx context.Context, b *models.BanquetBooking) {
	if s.sheets == nil || !s.sheets.IsConfigured() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rowRef, err := s.sheets.AppendRow(ctx, s.sheetID, sheetValues(b))
	if err != nil {
		utils.ErrorLogger.WithField("banquet_id", b.ID).Warnf("Spreadsheet append failed: %v", err)
		return
	}
	if err := s.db.WithContext(ctx).Model(b).Update("sheet_row_ref", rowRef).Error; err != nil {
		utils.ErrorLogger.WithField("banquet_id", b.ID).Warnf("Saving sheet row ref failed: %v", err)
		return
	}
	b.SheetRowRef = rowRef
}

func (s *BanquetService) updateSheetRow(ctx context.Context, b *models.BanquetBooking) {
	if s.sheets == nil || !s.sheets.IsConfigured() {
		return
	}
	if b.SheetRowRef == "" {
		s.appendSheetRow(ctx, b)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.sheets.UpdateRow(ctx, s.sheetID, b.SheetRowRef, sheetValues(b)); err != nil {
		utils.ErrorLogger.WithField("banquet_id", b.ID).Warnf("Spreadsheet update failed: %v", err)
	}
}

func (s *BanquetService) notify(b *models.BanquetBooking, intro string, alertAdmins bool) {
	snapshot := *b
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body, err := renderBanquetEmail(intro, &snapshot)
		if err != nil {
			utils.ErrorLogger.Printf("Error rendering banquet email: %v", err)
			return
		}
		subject := fmt.Sprintf("Event booking %s: %s", snapshot.ReferenceCode, snapshot.Status)
		if err := s.notifier.Send(ctx, []string{snapshot.CustomerEmail}, subject, body); err != nil {
			utils.ErrorLogger.WithField("banquet_id", snapshot.ID).Warnf("Customer email failed: %v", err)
		}
		if alertAdmins && len(s.adminRecipients) > 0 {
			adminSubject := fmt.Sprintf("New %s request for %s (%d guests)", snapshot.EventType, snapshot.EventDate, snapshot.GuestCount)
			if err := s.notifier.Send(ctx, s.adminRecipients, adminSubject, body); err != nil {
				utils.ErrorLogger.WithField("banquet_id", snapshot.ID).Warnf("Admin email failed: %v", err)
			}
		}
	})
}
