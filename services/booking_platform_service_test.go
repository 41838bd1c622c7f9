package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestBookingPlatformService_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  BookingPlatformConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  BookingPlatformConfig{BaseURL: "https://api.example.com", APIKey: "key", RestaurantID: "r-1"},
			wantErr: false,
		},
		{
			name:    "missing base url",
			config:  BookingPlatformConfig{APIKey: "key", RestaurantID: "r-1"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			config:  BookingPlatformConfig{BaseURL: "https://api.example.com", RestaurantID: "r-1"},
			wantErr: true,
		},
		{
			name:    "missing restaurant id",
			config:  BookingPlatformConfig{BaseURL: "https://api.example.com", APIKey: "key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := NewBookingPlatformService(tt.config)
			err := bs.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, !tt.wantErr, bs.IsConfigured())
		})
	}
}

func TestBookingPlatformService_WidgetEmbedURL(t *testing.T) {
	bs := NewBookingPlatformService(BookingPlatformConfig{BaseURL: "https://api.example.com/", APIKey: "k", RestaurantID: "r 1"})
	assert.Equal(t, "https://api.example.com/widget/r%201", bs.WidgetEmbedURL())

	bs = NewBookingPlatformService(BookingPlatformConfig{WidgetURL: "https://book.example.com/embed"})
	assert.Equal(t, "https://book.example.com/embed", bs.WidgetEmbedURL())

	assert.Empty(t, NewBookingPlatformService(BookingPlatformConfig{}).WidgetEmbedURL())
}

func TestBookingPlatformService_CreateReservation(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockStatusCode int
		wantID         string
		wantErr        bool
	}{
		{
			name:           "flat id",
			mockResponse:   `{"id": "rem-1"}`,
			mockStatusCode: http.StatusCreated,
			wantID:         "rem-1",
		},
		{
			name:           "nested id",
			mockResponse:   `{"reservation": {"id": "rem-2"}}`,
			mockStatusCode: http.StatusOK,
			wantID:         "rem-2",
		},
		{
			name:           "no id",
			mockResponse:   `{}`,
			mockStatusCode: http.StatusOK,
			wantErr:        true,
		},
		{
			name:           "api error",
			mockResponse:   `{"error": "slot taken"}`,
			mockStatusCode: http.StatusUnprocessableEntity,
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth string
			var gotBody map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.Method + " " + r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				raw, _ := io.ReadAll(r.Body)
				json.Unmarshal(raw, &gotBody)
				w.WriteHeader(tt.mockStatusCode)
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			bs := NewBookingPlatformService(BookingPlatformConfig{BaseURL: server.URL, APIKey: "secret", RestaurantID: "r-9"})
			res := &models.Reservation{
				ConfirmationCode: "RSV-ABC",
				FirstName:        "Ada",
				NumberOfGuests:   4,
				ReservationDate:  "2025-06-01",
				ReservationTime:  "18:00",
				Duration:         120,
				Table:            models.Table{Number: 2},
			}

			id, err := bs.CreateReservation(context.Background(), res)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateReservation() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, "POST /restaurants/r-9/reservations", gotPath)
			assert.Equal(t, "Bearer secret", gotAuth)
			assert.Equal(t, "RSV-ABC", gotBody["external_ref"])
			assert.EqualValues(t, 4, gotBody["party_size"])
			assert.EqualValues(t, 2, gotBody["table_number"])
		})
	}
}

func TestBookingPlatformService_UpdateAndCancel(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	bs := NewBookingPlatformService(BookingPlatformConfig{BaseURL: server.URL, APIKey: "secret", RestaurantID: "r-9"})
	require.NoError(t, bs.UpdateReservation(context.Background(), "rem-1", map[string]interface{}{"party_size": 3}))
	require.NoError(t, bs.CancelReservation(context.Background(), "rem-1"))

	assert.Equal(t, []string{"PATCH /reservations/rem-1", "POST /reservations/rem-1/cancel"}, calls)

	unconfigured := NewBookingPlatformService(BookingPlatformConfig{})
	assert.Error(t, unconfigured.CancelReservation(context.Background(), "rem-1"))
}
