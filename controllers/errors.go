package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

var (
	ErrInvalidID      = &CustomError{"Invalid id"}
	ErrInvalidBody    = &CustomError{"Invalid request body"}
	ErrInternal       = &CustomError{"Something went wrong, please try again later"}
	ErrNotAuthorized  = &CustomError{"Unauthorized"}
	ErrBadCredentials = &CustomError{"Invalid credentials"}
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError maps service errors onto HTTP statuses. Unknown errors
// are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrBanquetNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrTableTooSmall),
		errors.Is(err, services.ErrInvalidDuration):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNoTableAvailable),
		errors.Is(err, services.ErrSlotConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrDuplicateTable):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, ErrInternal)
	}
}

// bindJSON decodes the body and answers 400 itself when it cannot.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			utils.RespondFieldErrors(c, http.StatusBadRequest, "Validation failed", map[string]string{
				typeErr.Field: "must be a " + typeErr.Type.String(),
			})
			return false
		}
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidBody)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) services.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return services.Pagination{Page: page, Limit: limit}
}

type pageData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func newPage(items interface{}, total int64, p services.Pagination) pageData {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return pageData{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}
