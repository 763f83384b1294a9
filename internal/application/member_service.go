package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/domain/member"
	"github.com/leavedesk/service-booking/pkg/domain"
)

// RegisterMemberRequest holds the data needed to register.
type RegisterMemberRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Email           string `json:"email"`
	LineDisplayName string `json:"line_display_name"`
	LinePictureURL  string `json:"line_picture_url"`
}

// UpdateMemberRequest holds the profile fields to change.
type UpdateMemberRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Email           string `json:"email"`
	LineDisplayName string `json:"line_display_name"`
	LinePictureURL  string `json:"line_picture_url"`
}

// MemberDTO is the response representation of a member.
type MemberDTO struct {
	LineUserID      string    `json:"line_user_id"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email,omitempty"`
	LineDisplayName string    `json:"line_display_name,omitempty"`
	LinePictureURL  string    `json:"line_picture_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MemberService handles member profile use cases.
type MemberService struct {
	repo   member.MemberRepository
	logger *zap.Logger
}

// NewMemberService creates a new MemberService.
func NewMemberService(repo member.MemberRepository, logger *zap.Logger) *MemberService {
	return &MemberService{repo: repo, logger: logger}
}

// Register creates the caller's member profile.
func (s *MemberService) Register(ctx context.Context, lineUserID string, req RegisterMemberRequest) (*MemberDTO, error) {
	exists, err := s.repo.Exists(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError("member is already registered")
	}

	m, err := member.NewMember(lineUserID, req.FullName, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	m.UpdateLineProfile(req.LineDisplayName, req.LinePictureURL)

	if err := s.repo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	s.logger.Info("member registered", zap.String("user_id", lineUserID))
	result := toMemberDTO(m)
	return &result, nil
}

// GetProfile returns the caller's member profile.
func (s *MemberService) GetProfile(ctx context.Context, lineUserID string) (*MemberDTO, error) {
	m, err := s.repo.FindByLineUserID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	result := toMemberDTO(m)
	return &result, nil
}

// IsRegistered reports whether the LINE user has a member profile.
func (s *MemberService) IsRegistered(ctx context.Context, lineUserID string) (bool, error) {
	return s.repo.Exists(ctx, lineUserID)
}

// UpdateProfile changes the caller's member profile.
func (s *MemberService) UpdateProfile(ctx context.Context, lineUserID string, req UpdateMemberRequest) (*MemberDTO, error) {
	m, err := s.repo.FindByLineUserID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if err := m.UpdateProfile(req.FullName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	m.UpdateLineProfile(req.LineDisplayName, req.LinePictureURL)
	m.IncrementVersion()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	result := toMemberDTO(m)
	return &result, nil
}

func toMemberDTO(m *member.Member) MemberDTO {
	return MemberDTO{
		LineUserID:      m.LineUserID(),
		FullName:        m.FullName(),
		Phone:           m.Phone(),
		Email:           m.Email(),
		LineDisplayName: m.LineDisplayName(),
		LinePictureURL:  m.LinePictureURL(),
		CreatedAt:       m.CreatedAt(),
		UpdatedAt:       m.UpdatedAt(),
	}
}
