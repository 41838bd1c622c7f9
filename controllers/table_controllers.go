package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type TableController struct {
	Catalog *services.TableCatalog
	Events  services.EventPublisher
}

func NewTableController(catalog *services.TableCatalog, events services.EventPublisher) *TableController {
	if events == nil {
		events = services.NoopPublisher{}
	}
	return &TableController{Catalog: catalog, Events: events}
}

// CreateTable -> add a table to the floor plan
func (tc *TableController) CreateTable(c *gin.Context) {
	var req services.NewTableInput
	if !bindJSON(c, &req) {
		return
	}

	table, err := tc.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Events.Publish(services.EventTableCreated, table)
	utils.InfoLogger.Printf("New table created: %d (capacity=%d)", table.Number, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetActiveTables -> public list used by the booking form
func (tc *TableController) GetActiveTables(c *gin.Context) {
	tables, err := tc.Catalog.List(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetAllTables -> admin list, ?include_inactive=true shows retired tables
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Catalog.List(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := paramID(c, "table_id")
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

	table, err := tc.Catalog.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Events.Publish(services.EventTableUpdated, table)
	utils.InfoLogger.Printf("Table %d status changed to %s", table.Number, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> retires the table; its reservations stay intact
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Catalog.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Events.Publish(services.EventTableUpdated, table)
	utils.InfoLogger.Printf("Table %d deactivated", table.Number)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", table)
}
