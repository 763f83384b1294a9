package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/pkg/auth"
	"github.com/leavedesk/service-booking/pkg/middleware"
	"github.com/leavedesk/service-booking/pkg/response"
)

// MemberHandler handles HTTP requests for member profiles.
type MemberHandler struct {
	service *application.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(service *application.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

// RegisterRoutes registers member routes.
func (h *MemberHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	members := r.Group("/api/v1/members")
	members.Use(middleware.AuthMiddleware(jwtManager))
	{
		members.POST("/me", h.Register)
		members.GET("/me", h.GetProfile)
		members.PUT("/me", h.UpdateProfile)
		members.GET("/me/status", h.Status)
	}
}

// Register handles POST /api/v1/members/me.
func (h *MemberHandler) Register(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.LineDisplayName == "" {
		req.LineDisplayName = middleware.GetUserName(c)
	}

	result, err := h.service.Register(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetProfile handles GET /api/v1/members/me.
func (h *MemberHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProfile handles PUT /api/v1/members/me.
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Status handles GET /api/v1/members/me/status.
func (h *MemberHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	registered, err := h.service.IsRegistered(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"registered": registered})
}
