package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type DashboardController struct {
	Dashboard *services.DashboardService
	Location  *time.Location
}

func NewDashboardController(dashboard *services.DashboardService, loc *time.Location) *DashboardController {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardController{Dashboard: dashboard, Location: loc}
}

// GetStats -> ?date=YYYY-MM-DD, defaults to today in the restaurant's timezone
func (dc *DashboardController) GetStats(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().In(dc.Location).Format(models.DateLayout))
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", map[string]string{"date": "must be a date in YYYY-MM-DD format"})
		return
	}

	stats, err := dc.Dashboard.Stats(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
