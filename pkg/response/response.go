package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavedesk/service-booking/pkg/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Coded is implemented by business-rule errors that carry their own
// machine-readable code. They are rendered as 422.
type Coded interface {
	error
	Code() string
	Details() interface{}
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", nil)
}

// Error maps err to a status code and writes it.
func Error(c *gin.Context, err error) {
	var coded Coded
	if errors.As(err, &coded) {
		fail(c, http.StatusUnprocessableEntity, coded.Code(), coded.Error(), coded.Details())
		return
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			fail(c, http.StatusBadRequest, "VALIDATION_ERROR", de.Message, nil)
		case domain.KindNotFound:
			fail(c, http.StatusNotFound, "NOT_FOUND", de.Message, nil)
		case domain.KindConflict:
			fail(c, http.StatusConflict, "CONFLICT", de.Message, nil)
		case domain.KindForbidden:
			fail(c, http.StatusForbidden, "FORBIDDEN", de.Message, nil)
		case domain.KindUnauthorized:
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", de.Message, nil)
		default:
			fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		}
		return
	}

	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

func fail(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}
