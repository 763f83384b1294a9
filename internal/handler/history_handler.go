package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/pkg/auth"
	"github.com/leavedesk/service-booking/pkg/middleware"
	"github.com/leavedesk/service-booking/pkg/response"
)

// HistoryHandler handles HTTP requests for booking history.
type HistoryHandler struct {
	service *application.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service *application.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// RegisterRoutes registers history routes.
func (h *HistoryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.GET("/:id/history", h.ListForBooking)
	}
}

// ListForBooking handles GET /api/v1/bookings/:id/history.
func (h *HistoryHandler) ListForBooking(c *gin.Context) {
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

	entries, err := h.service.ListForBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}
