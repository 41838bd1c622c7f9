package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/models"
)

// RemoteBookingClient is the capability the core needs from the external
// reservation platform.
type RemoteBookingClient interface {
	IsConfigured() bool
	CreateReservation(ctx context.Context, res *models.Reservation) (string, error)
	UpdateReservation(ctx context.Context, externalID string, fields map[string]interface{}) error
	CancelReservation(ctx context.Context, externalID string) error
	WidgetEmbedURL() string
}

// BookingPlatformConfig holds the platform credentials.
type BookingPlatformConfig struct {
	BaseURL      string
	APIKey       string
	RestaurantID string
	WidgetURL    string
}

// BookingPlatformService talks to the reservation platform's REST API.
type BookingPlatformService struct {
	config     BookingPlatformConfig
	httpClient *http.Client
}

func NewBookingPlatformService(cfg BookingPlatformConfig) *BookingPlatformService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &BookingPlatformService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig lists the first missing setting, if any.
func (bs *BookingPlatformService) ValidateConfig() error {
	if bs.config.BaseURL == "" {
		return fmt.Errorf("REMOTE_BOOKING_BASE_URL is not set")
	}
	if bs.config.APIKey == "" {
		return fmt.Errorf("REMOTE_BOOKING_API_KEY is not set")
	}
	if bs.config.RestaurantID == "" {
		return fmt.Errorf("REMOTE_BOOKING_RESTAURANT_ID is not set")
	}
	return nil
}

func (bs *BookingPlatformService) IsConfigured() bool {
	return bs.ValidateConfig() == nil
}

func (bs *BookingPlatformService) WidgetEmbedURL() string {
	if bs.config.WidgetURL != "" {
		return bs.config.WidgetURL
	}
	if !bs.IsConfigured() {
		return ""
	}
	return fmt.Sprintf("%s/widget/%s", bs.config.BaseURL, url.PathEscape(bs.config.RestaurantID))
}

type remoteReservationPayload struct {
	ExternalRef     string `json:"external_ref"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CountryCode     string `json:"country_code,omitempty"`
	PartySize       int    `json:"party_size"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	TableNumber     int    `json:"table_number,omitempty"`
	Occasion        string `json:"occasion,omitempty"`
	Notes           string `json:"notes,omitempty"`
	MarketingOptIn  bool   `json:"restaurant_marketing"`
	PlatformOptIn   bool   `json:"platform_marketing"`
	SMSOptIn        bool   `json:"sms_updates"`
}

type remoteReservationResponse struct {
	ID          string `json:"id"`
	Reservation struct {
		ID string `json:"id"`
	} `json:"reservation"`
}

func (bs *BookingPlatformService) CreateReservation(ctx context.Context, res *models.Reservation) (string, error) {
	if err := bs.ValidateConfig(); err != nil {
		return "", err
	}

	payload := remoteReservationPayload{
		ExternalRef:     res.ConfirmationCode,
		FirstName:       res.FirstName,
		LastName:        res.LastName,
		Email:           res.CustomerEmail,
		Phone:           res.CustomerPhone,
		CountryCode:     res.PhoneCountryCode,
		PartySize:       res.NumberOfGuests,
		Date:            res.ReservationDate,
		Time:            res.ReservationTime,
		DurationMinutes: res.Duration,
		TableNumber:     res.Table.Number,
		Occasion:        res.Occasion,
		Notes:           res.SpecialRequests,
		MarketingOptIn:  res.RestaurantMarketing,
		PlatformOptIn:   res.PlatformMarketing,
		SMSOptIn:        res.SMSUpdates,
	}

	endpoint := fmt.Sprintf("%s/restaurants/%s/reservations", bs.config.BaseURL, url.PathEscape(bs.config.RestaurantID))
	body, err := bs.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return "", err
	}

	var out remoteReservationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	id := out.ID
	if id == "" {
		id = out.Reservation.ID
	}
	if id == "" {
		return "", fmt.Errorf("remote platform returned no reservation id")
	}
	return id, nil
}

func (bs *BookingPlatformService) UpdateReservation(ctx context.Context, externalID string, fields map[string]interface{}) error {
	if err := bs.ValidateConfig(); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/reservations/%s", bs.config.BaseURL, url.PathEscape(externalID))
	_, err := bs.do(ctx, http.MethodPatch, endpoint, fields)
	return err
}

func (bs *BookingPlatformService) CancelReservation(ctx context.Context, externalID string) error {
	if err := bs.ValidateConfig(); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/reservations/%s/cancel", bs.config.BaseURL, url.PathEscape(externalID))
	_, err := bs.do(ctx, http.MethodPost, endpoint, map[string]string{"reason": "cancelled by restaurant"})
	return err
}

func (bs *BookingPlatformService) do(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bs.config.APIKey)

	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote platform returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
