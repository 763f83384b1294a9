package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavedesk/service-booking/pkg/domain"
)

func TestNewBooking(t *testing.T) {
	b, err := NewBooking("U1", "Somchai", d("2025-02-10"), dp("2025-02-12"), CategoryDomestic, "  family trip ")
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID())
	assert.Equal(t, "U1", b.UserID())
	assert.Equal(t, "family trip", b.Reason())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, 3, b.Span())
	assert.Len(t, b.Dates(), 3)
	assert.Equal(t, "2025-02-12", b.End().String())
}

func TestNewBooking_Invariants(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		start    string
		end      string
		category Category
	}{
		{"missing user", "", "2025-02-10", "", CategoryDomestic},
		{"end before start", "U1", "2025-02-10", "2025-02-09", CategoryDomestic},
		{"unknown category", "U1", "2025-02-10", "", Category("sabbatical")},
		{"span over limit", "U1", "2025-02-01", "2025-02-08", CategoryDomestic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var end = dp(tt.start)
			if tt.end != "" {
				end = dp(tt.end)
			}
			_, err := NewBooking(tt.userID, "x", d(tt.start), end, tt.category, "")
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestBooking_SingleDay(t *testing.T) {
	b, err := NewBooking("U1", "x", d("2025-02-10"), nil, CategoryInternational, "")
	require.NoError(t, err)

	assert.Nil(t, b.EndDate())
	assert.Equal(t, 1, b.Span())
	assert.True(t, b.Covers(d("2025-02-10")))
	assert.False(t, b.Covers(d("2025-02-11")))
}

func TestBooking_CoversAndOverlaps(t *testing.T) {
	b := existing("U1", "2025-01-30", "2025-02-02", CategoryDomestic)

	assert.False(t, b.Covers(d("2025-01-29")))
	assert.True(t, b.Covers(d("2025-01-30")))
	assert.True(t, b.Covers(d("2025-02-02")))
	assert.False(t, b.Covers(d("2025-02-03")))

	assert.True(t, b.Overlaps(d("2025-02-01"), d("2025-02-28")))
	assert.False(t, b.Overlaps(d("2025-02-03"), d("2025-02-28")))
	assert.True(t, b.StartsIn(2025, time.January))
	assert.False(t, b.StartsIn(2025, time.February))
}

func TestBooking_Reschedule(t *testing.T) {
	b := existing("U1", "2025-04-01", "", CategoryDomestic)
	before := b.Snapshot()

	require.NoError(t, b.Reschedule(d("2025-04-03"), dp("2025-04-10"), CategoryInternational, "conference"))

	after := b.Snapshot()
	assert.Equal(t, "2025-04-01", before.Date)
	assert.Nil(t, before.EndDate)
	assert.Equal(t, "2025-04-03", after.Date)
	require.NotNil(t, after.EndDate)
	assert.Equal(t, "2025-04-10", *after.EndDate)
	assert.Equal(t, CategoryInternational, after.Category)

	err := b.Reschedule(d("2025-04-03"), dp("2025-04-10"), CategoryDomestic, "")
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, CategoryInternational, b.Category(), "failed reschedule leaves booking unchanged")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Domestic ")
	require.NoError(t, err)
	assert.Equal(t, CategoryDomestic, c)
	assert.Equal(t, 7, c.MaxDays())
	assert.Equal(t, 9, CategoryInternational.MaxDays())
	assert.Equal(t, "International", CategoryInternational.Label())

	_, err = ParseCategory("vacation")
	assert.Error(t, err)
}

func TestSnapshot_JSONKeys(t *testing.T) {
	b, err := NewBooking("U1", "Somchai", d("2025-02-10"), dp("2025-02-12"), CategoryInternational, "conference")
	require.NoError(t, err)

	raw, err := json.Marshal(b.Snapshot())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "2025-02-10", fields["date"])
	assert.Equal(t, "2025-02-12", fields["endDate"])
	assert.Equal(t, "international", fields["category"])
	assert.Contains(t, fields, "updatedAt")
	assert.NotContains(t, fields, "end_date")
	assert.NotContains(t, fields, "updated_at")
}
