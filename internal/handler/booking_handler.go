package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/pkg/auth"
	"github.com/leavedesk/service-booking/pkg/domain"
	"github.com/leavedesk/service-booking/pkg/middleware"
	"github.com/leavedesk/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// ValidateBookingRequest is a dry-run booking check.
type ValidateBookingRequest struct {
	application.CreateBookingRequest
	ExcludeBookingID string `json:"exclude_booking_id"`
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/me", h.ListMyBookings)
		bookings.POST("/validate", h.ValidateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	r.GET("/api/v1/availability", authMW, h.GetAvailability)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings?year=&month= and GET /api/v1/bookings?date=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		result, err := h.service.ListByDate(c.Request.Context(), date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.BadRequest(c, "year and month, or date, are required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		response.BadRequest(c, "year and month, or date, are required")
		return
	}

	result, err := h.service.ListByMonth(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyBookings handles GET /api/v1/bookings/me.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.ListMyBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), actor, bookingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true, "id": bookingID})
}

// ValidateBooking handles POST /api/v1/bookings/validate. Rule failures are
// reported in the body with status 200.
func (h *BookingHandler) ValidateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req ValidateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	excludeID := uuid.Nil
	if req.ExcludeBookingID != "" {
		id, err := uuid.Parse(req.ExcludeBookingID)
		if err != nil {
			response.BadRequest(c, "invalid exclude_booking_id")
			return
		}
		excludeID = id
	}

	result, err := h.service.ValidateBooking(c.Request.Context(), userID, req.CreateBookingRequest, excludeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAvailability handles GET /api/v1/availability?start=&end=.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		response.Error(c, domain.NewValidationError("start and end are required"))
		return
	}

	result, err := h.service.GetAvailability(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// actorFrom builds the caller identity set by AuthMiddleware.
func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return application.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return application.Actor{
		UserID:      userID,
		DisplayName: middleware.GetUserName(c),
		IsAdmin:     role == auth.RoleAdmin,
	}, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
