package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/pkg/domain"
)

func TestMemberService_RegisterAndUpdate(t *testing.T) {
	repo := newFakeMemberRepo()
	svc := NewMemberService(repo, zap.NewNop())
	ctx := context.Background()

	registered, err := svc.IsRegistered(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, registered)

	dto, err := svc.Register(ctx, "U1", RegisterMemberRequest{
		FullName: "Somchai Jaidee", Phone: "0812345678", LineDisplayName: "Chai",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chai", dto.LineDisplayName)

	_, err = svc.Register(ctx, "U1", RegisterMemberRequest{FullName: "Again", Phone: "0812345678"})
	assert.True(t, domain.IsConflict(err))

	updated, err := svc.UpdateProfile(ctx, "U1", UpdateMemberRequest{FullName: "Somchai J.", Phone: "0899999999", Email: "s@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Somchai J.", updated.FullName)
	assert.Equal(t, "Chai", updated.LineDisplayName)

	_, err = svc.GetProfile(ctx, "U2")
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.Register(ctx, "U3", RegisterMemberRequest{FullName: "", Phone: "0812345678"})
	assert.True(t, domain.IsValidation(err))
}
