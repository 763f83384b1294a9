package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	BookingID string `json:"booking_id"`
	Days      int    `json:"days"`
}

func TestCloudEvent_RoundTrip(t *testing.T) {
	ce, err := NewCloudEvent("service-booking", "leave.booking.created", samplePayload{BookingID: "b-1", Days: 3})
	require.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)

	var p samplePayload
	require.NoError(t, ce.ParseData(&p))
	assert.Equal(t, "b-1", p.BookingID)
	assert.Equal(t, 3, p.Days)
}

func TestParseCloudEvent_Invalid(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"1"}`))
	assert.Error(t, err)
}
