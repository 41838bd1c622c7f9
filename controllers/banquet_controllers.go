package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type BanquetController struct {
	Banquets *services.BanquetService
}

func NewBanquetController(banquets *services.BanquetService) *BanquetController {
	return &BanquetController{Banquets: banquets}
}

func (bc *BanquetController) CreateBanquet(c *gin.Context) {
	var req services.BanquetRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := bc.Banquets.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Event booking request received", b)
}

func (bc *BanquetController) ListBanquets(c *gin.Context) {
	p := pagination(c)
	items, total, err := bc.Banquets.List(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of event bookings", newPage(items, total, p))
}

func (bc *BanquetController) GetBanquet(c *gin.Context) {
	id, ok := paramID(c, "banquet_id")
	if !ok {
		return
	}
	b, err := bc.Banquets.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event booking detail", b)
}

func (bc *BanquetController) UpdateBanquetStatus(c *gin.Context) {
	id, ok := paramID(c, "banquet_id")
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
	b, err := bc.Banquets.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event booking status updated", b)
}

func (bc *BanquetController) DeleteBanquet(c *gin.Context) {
	id, ok := paramID(c, "banquet_id")
	if !ok {
		return
	}
	if _, err := bc.Banquets.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event booking deleted", gin.H{"id": id})
}
