package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaungmyatmindfulness/origin-food-house-backend/apperr"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError maps an error onto the response envelope. Classified errors
// carry their own status code and optional details; anything else is
// rendered as a generic internal error so storage internals never leak.
func RespondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	c.JSON(statusCode(appErr.Kind), JSONResponse{
		Status:  false,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func statusCode(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
