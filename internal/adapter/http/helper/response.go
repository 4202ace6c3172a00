package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, validationErrors []response.ValidationError) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: "internal server error",
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

// SendNotFound answers 404 with an empty body.
func SendNotFound(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotFound)
}

func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
