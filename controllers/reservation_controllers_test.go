package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
)

func TestCreateReservation(t *testing.T) {
	app := setupApp(t)

	w, resp := app.do(t, http.MethodPost, "/reservations", "", bookingPayload(4, "19:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "Reservation created successfully", resp.Message)

	var res models.Reservation
	decode(t, resp.Data, &res)
	assert.NotZero(t, res.ID)
	assert.Equal(t, uint(3), res.TableID)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, 120, res.Duration)
	assert.Equal(t, "Grace Hopper", res.CustomerName)
	assert.NotEmpty(t, res.ConfirmationCode)
	assert.False(t, res.Synced)
}

func TestCreateReservation_Rejections(t *testing.T) {
	app := setupApp(t)

	missingEmail := bookingPayload(2, "19:00")
	delete(missingEmail, "email")
	w, resp := app.do(t, http.MethodPost, "/reservations", "", missingEmail)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "email")

	tooSmall := bookingPayload(5, "19:00")
	tooSmall["table_id"] = 1
	w, _ = app.do(t, http.MethodPost, "/reservations", "", tooSmall)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	unknown := bookingPayload(2, "19:00")
	unknown["table_id"] = 99
	w, _ = app.do(t, http.MethodPost, "/reservations", "", unknown)
	assert.Equal(t, http.StatusNotFound, w.Code)

	wrongType := bookingPayload(2, "19:00")
	wrongType["party_size"] = "two"
	w, resp = app.do(t, http.MethodPost, "/reservations", "", wrongType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Errors, "party_size")
}

func TestReservationConflictAfterConfirm(t *testing.T) {
	app := setupApp(t)
	token := app.adminToken(t)

	first := bookingPayload(4, "19:00")
	first["table_id"] = 3
	w, resp := app.do(t, http.MethodPost, "/reservations", "", first)
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.Reservation
	decode(t, resp.Data, &res)

	w, _ = app.do(t, http.MethodPatch, fmt.Sprintf("/admin/reservations/%d/status", res.ID), token,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)

	query := map[string]interface{}{"table_id": 3, "party_size": 4, "date": futureDate, "time": "20:00"}
	w, resp = app.do(t, http.MethodPost, "/reservations/availability", "", query)
	require.Equal(t, http.StatusOK, w.Code)
	var availability services.Availability
	decode(t, resp.Data, &availability)
	assert.False(t, availability.Available)
	assert.Equal(t, services.ErrSlotConflict.Error(), availability.Reason)

	// 21:00 starts exactly when the first booking ends.
	query["time"] = "21:00"
	_, resp = app.do(t, http.MethodPost, "/reservations/availability", "", query)
	decode(t, resp.Data, &availability)
	assert.True(t, availability.Available)

	second := bookingPayload(4, "20:00")
	second["table_id"] = 3
	w, _ = app.do(t, http.MethodPost, "/reservations", "", second)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.do(t, http.MethodPost, "/reservations", "", bookingPayload(4, "20:00"))
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAdminReservationLifecycle(t *testing.T) {
	app := setupApp(t)
	token := app.adminToken(t)

	w, resp := app.do(t, http.MethodPost, "/reservations", "", bookingPayload(2, "12:30"))
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.Reservation
	decode(t, resp.Data, &res)
	path := fmt.Sprintf("/admin/reservations/%d", res.ID)

	w, resp = app.do(t, http.MethodGet, "/admin/reservations?date="+futureDate+"&status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []models.Reservation `json:"items"`
		Total int64                `json:"total"`
	}
	decode(t, resp.Data, &page)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, res.ID, page.Items[0].ID)

	w, _ = app.do(t, http.MethodGet, "/admin/reservations?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = app.do(t, http.MethodPatch, path, token, map[string]interface{}{"reservation_time": "13:00", "number_of_guests": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Reservation
	decode(t, resp.Data, &updated)
	assert.Equal(t, "13:00", updated.ReservationTime)

	w, _ = app.do(t, http.MethodPatch, path+"/status", token, map[string]string{"status": "seated"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = app.do(t, http.MethodPost, path+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, resp.Data, &updated)
	assert.Equal(t, models.ReservationCancelled, updated.Status)

	w, _ = app.do(t, http.MethodPatch, path+"/status", token, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(t, http.MethodGet, "/admin/reservations/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingWidget_Disabled(t *testing.T) {
	app := setupApp(t)

	w, resp := app.do(t, http.MethodGet, "/booking/widget", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Enabled bool   `json:"enabled"`
		URL     string `json:"url"`
	}
	decode(t, resp.Data, &data)
	assert.False(t, data.Enabled)
	assert.Empty(t, data.URL)
}
