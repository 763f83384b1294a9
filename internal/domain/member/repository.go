package member

import "context"

// MemberRepository defines persistence operations for member profiles.
type MemberRepository interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*Member, error)
	Exists(ctx context.Context, lineUserID string) (bool, error)
	Save(ctx context.Context, member *Member) error
	Update(ctx context.Context, member *Member) error
}
