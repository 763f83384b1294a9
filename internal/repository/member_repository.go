package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/leavedesk/service-booking/internal/domain/member"
	"github.com/leavedesk/service-booking/pkg/domain"
)

// MemberModel is the GORM model for the users table.
type MemberModel struct {
	LineUserID      string    `gorm:"column:line_user_id;size:64;primaryKey"`
	FullName        string    `gorm:"size:255;not null"`
	Phone           string    `gorm:"size:32;not null"`
	Email           string    `gorm:"size:255"`
	LineDisplayName string    `gorm:"size:255"`
	LinePictureURL  string    `gorm:"column:line_picture_url;size:1000"`
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (MemberModel) TableName() string {
	return "users"
}

// GormMemberRepository implements MemberRepository using GORM.
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository.
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByLineUserID retrieves a member by LINE user ID.
func (r *GormMemberRepository) FindByLineUserID(ctx context.Context, lineUserID string) (*member.Member, error) {
	var m MemberModel
	if err := r.db.WithContext(ctx).Where("line_user_id = ?", lineUserID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Member", lineUserID)
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member.Reconstruct(m.LineUserID, m.FullName, m.Phone, m.Email, m.LineDisplayName, m.LinePictureURL, m.Version, m.CreatedAt, m.UpdatedAt), nil
}

// Exists reports whether the LINE user has registered.
func (r *GormMemberRepository) Exists(ctx context.Context, lineUserID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&MemberModel{}).Where("line_user_id = ?", lineUserID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check member: %w", err)
	}
	return count > 0, nil
}

// Save persists a new member.
func (r *GormMemberRepository) Save(ctx context.Context, m *member.Member) error {
	if err := r.db.WithContext(ctx).Create(toMemberModel(m)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("member is already registered")
		}
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// Update persists changes to a member with optimistic locking.
func (r *GormMemberRepository) Update(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m)
	result := r.db.WithContext(ctx).
		Model(&MemberModel{}).
		Where("line_user_id = ? AND version = ?", model.LineUserID, model.Version-1).
		Updates(map[string]interface{}{
			"full_name":         model.FullName,
			"phone":             model.Phone,
			"email":             model.Email,
			"line_display_name": model.LineDisplayName,
			"line_picture_url":  model.LinePictureURL,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("member was modified by another request")
	}
	return nil
}

func toMemberModel(m *member.Member) *MemberModel {
	return &MemberModel{
		LineUserID:      m.LineUserID(),
		FullName:        m.FullName(),
		Phone:           m.Phone(),
		Email:           m.Email(),
		LineDisplayName: m.LineDisplayName(),
		LinePictureURL:  m.LinePictureURL(),
		Version:         m.Version(),
		CreatedAt:       m.CreatedAt(),
		UpdatedAt:       m.UpdatedAt(),
	}
}
