package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Subject string `json:"subject" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
}

type ContactService struct {
	db              *gorm.DB
	notifier        Notifier
	events          EventPublisher
	adminRecipients []string
	background      func(func())
}

func NewContactService(db *gorm.DB, notifier Notifier, events EventPublisher, adminRecipients []string) *ContactService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &ContactService{
		db:              db,
		notifier:        notifier,
		events:          events,
		adminRecipients: adminRecipients,
		background:      func(f func()) { go f() },
	}
}

func (s *ContactService) Create(ctx context.Context, req ContactRequest) (*models.ContactMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req).orNil(); err != nil {
		return nil, err
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	utils.InfoLogger.WithField("message_id", msg.ID).Info("Contact message received")

	s.events.Publish(EventContactCreated, &msg)
	if len(s.adminRecipients) > 0 {
		snapshot := msg
		s.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			body, err := renderContactEmail(&snapshot)
			if err != nil {
				utils.ErrorLogger.Printf("Error rendering contact email: %v", err)
				return
			}
			subject := "New contact message from " + snapshot.Name
			if err := s.notifier.Send(ctx, s.adminRecipients, subject, body); err != nil {
				utils.ErrorLogger.WithField("message_id", snapshot.ID).Warnf("Admin email failed: %v", err)
			}
		})
	}
	return &msg, nil
}

// List returns messages newest first. unreadOnly hides messages already read.
func (s *ContactService) List(ctx context.Context, unreadOnly bool, p Pagination) ([]models.ContactMessage, int64, error) {
	p = p.normalize()
	q := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}
	var items []models.ContactMessage
	if err := q.Order("created_at DESC").Order("id DESC").Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	return items, total, nil
}

func (s *ContactService) MarkRead(ctx context.Context, id uint) (*models.ContactMessage, error) {
	result := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return nil, fmt.Errorf("mark message %d read: %w", id, result.Error)
	}
	return s.get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.ContactMessage{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete message %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (s *ContactService) get(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}
	return &msg, nil
}
