package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type ReservationController struct {
	Bookings *services.BookingService
}

func NewReservationController(bookings *services.BookingService) *ReservationController {
	return &ReservationController{Bookings: bookings}
}

// CreateReservation -> public booking form
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req services.BookingRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := rc.Bookings.Book(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", res)
}

// CheckAvailability -> would a booking for this slot succeed right now
func (rc *ReservationController) CheckAvailability(c *gin.Context) {
	var q services.AvailabilityQuery
	if !bindJSON(c, &q) {
		return
	}

	availability, err := rc.Bookings.CheckAvailability(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	msg := "Table available"
	if !availability.Available {
		msg = "No table available for this slot"
	}
	utils.RespondJSON(c, http.StatusOK, msg, availability)
}

// BookingWidget -> embed URL of the remote booking widget, if configured
func (rc *ReservationController) BookingWidget(c *gin.Context) {
	url := rc.Bookings.Remote().WidgetEmbedURL()
	utils.RespondJSON(c, http.StatusOK, "Booking widget", gin.H{
		"enabled": url != "",
		"url":     url,
	})
}

func (rc *ReservationController) ListReservations(c *gin.Context) {
	filter := services.ReservationFilter{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Status:   c.Query("status"),
	}
	if date := c.Query("date"); date != "" {
		filter.DateFrom, filter.DateTo = date, date
	}
	if filter.Status != "" && !models.IsValidReservationStatus(filter.Status) {
		utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", map[string]string{"status": "is invalid"})
		return
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", map[string]string{"table_id": "must be a number"})
			return
		}
		filter.TableID = uint(id)
	}

	p := pagination(c)
	items, total, err := rc.Bookings.List(c.Request.Context(), filter, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", newPage(items, total, p))
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	var upd services.ReservationUpdate
	if !bindJSON(c, &upd) {
		return
	}

	res, err := rc.Bookings.Update(c.Request.Context(), id, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", res)
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", map[string]string{"status": "is required"})
		return
	}

	res, err := rc.Bookings.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", res)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Bookings.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", gin.H{"id": res.ID})
}
