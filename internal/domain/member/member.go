package member

import (
	"regexp"
	"strings"
	"time"

	"github.com/leavedesk/service-booking/pkg/domain"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\- ]{7,18}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Member is a registered person allowed to book leave, keyed by LINE user ID.
type Member struct {
	lineUserID      string
	fullName        string
	phone           string
	email           string
	lineDisplayName string
	linePictureURL  string
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewMember registers a member with validated profile fields.
func NewMember(lineUserID, fullName, phone, email string) (*Member, error) {
	if strings.TrimSpace(lineUserID) == "" {
		return nil, domain.NewValidationError("LINE user ID is required")
	}
	m := &Member{lineUserID: lineUserID, version: 1}
	if err := m.setProfile(fullName, phone, email); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.createdAt = now
	m.updatedAt = now
	return m, nil
}

// Reconstruct rebuilds a Member from persistence data (no validation).
func Reconstruct(
	lineUserID, fullName, phone, email, lineDisplayName, linePictureURL string,
	version int64,
	createdAt, updatedAt time.Time,
) *Member {
	return &Member{
		lineUserID:      lineUserID,
		fullName:        fullName,
		phone:           phone,
		email:           email,
		lineDisplayName: lineDisplayName,
		linePictureURL:  linePictureURL,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (m *Member) LineUserID() string      { return m.lineUserID }
func (m *Member) FullName() string        { return m.fullName }
func (m *Member) Phone() string           { return m.phone }
func (m *Member) Email() string           { return m.email }
func (m *Member) LineDisplayName() string { return m.lineDisplayName }
func (m *Member) LinePictureURL() string  { return m.linePictureURL }
func (m *Member) Version() int64          { return m.version }
func (m *Member) CreatedAt() time.Time    { return m.createdAt }
func (m *Member) UpdatedAt() time.Time    { return m.updatedAt }

// --- Behavior ---

// UpdateProfile changes the member's contact details.
func (m *Member) UpdateProfile(fullName, phone, email string) error {
	if err := m.setProfile(fullName, phone, email); err != nil {
		return err
	}
	m.updatedAt = time.Now().UTC()
	return nil
}

// UpdateLineProfile records the latest display name and picture from LINE.
// Empty values keep the stored ones.
func (m *Member) UpdateLineProfile(displayName, pictureURL string) {
	if displayName != "" {
		m.lineDisplayName = displayName
	}
	if pictureURL != "" {
		m.linePictureURL = pictureURL
	}
	m.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (m *Member) IncrementVersion() {
	m.version++
}

func (m *Member) setProfile(fullName, phone, email string) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	if fullName == "" {
		return domain.NewValidationError("full name is required")
	}
	if !phonePattern.MatchString(phone) {
		return domain.NewValidationError("phone number is invalid")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return domain.NewValidationError("email is invalid")
	}

	m.fullName = fullName
	m.phone = phone
	m.email = email
	return nil
}
