package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/pkg/auth"
	"github.com/leavedesk/service-booking/pkg/middleware"
	"github.com/leavedesk/service-booking/pkg/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service *application.BookingService
	history *application.HistoryService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService, history *application.HistoryService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, history: history}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/users/:userId/bookings", h.ListUserBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/history", h.RecentHistory)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// ListUserBookings handles GET /api/v1/admin/users/:userId/bookings.
func (h *AdminBookingHandler) ListUserBookings(c *gin.Context) {
	bookings, err := h.service.ListMyBookings(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bookings)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// RecentHistory handles GET /api/v1/admin/history.
func (h *AdminBookingHandler) RecentHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.history.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, entries)
}
