package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineClient_PushText(t *testing.T) {
	var got pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewLineClient(srv.URL+"/", "token-123")
	require.NoError(t, client.PushText(context.Background(), "U1", "hello"))

	assert.Equal(t, "U1", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "text", got.Messages[0].Type)
	assert.Equal(t, "hello", got.Messages[0].Text)
}

func TestLineClient_PushTextRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)"}`))
	}))
	defer srv.Close()

	err := NewLineClient(srv.URL, "t").PushText(context.Background(), "U1", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "1 error(s)")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.False(t, statusErr.Temporary())
}

func TestStatusError_Temporary(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: http.StatusTooManyRequests}).Temporary())
	assert.True(t, (&StatusError{StatusCode: http.StatusBadGateway}).Temporary())
	assert.False(t, (&StatusError{StatusCode: http.StatusForbidden}).Temporary())
}

func TestLineClient_RequiresRecipient(t *testing.T) {
	assert.Error(t, NewLineClient("", "t").PushText(context.Background(), "", "hello"))
}
