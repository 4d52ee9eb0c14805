package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidDate  = "INVALID_DATE"
	CodeUnknownMeal  = "UNKNOWN_MEAL_TYPE"
	CodeNotFound     = "NOT_FOUND"
	CodeSwapRejected = "SWAP_REJECTED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err onto a status and code.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, planner.ErrInvalidDate):
		status, code = http.StatusBadRequest, CodeInvalidDate
	case errors.Is(err, planner.ErrUnknownMealType):
		status, code = http.StatusBadRequest, CodeUnknownMeal
	case errors.Is(err, planner.ErrDayNotFound),
		errors.Is(err, planner.ErrSlotEmpty),
		errors.Is(err, planner.ErrRecipeNotFound),
		errors.Is(err, planner.ErrItemNotFound),
		errors.Is(err, shopping.ErrListNotFound),
		errors.Is(err, shopping.ErrItemNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: msg})
}
