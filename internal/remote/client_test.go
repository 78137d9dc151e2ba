package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"orion-console/internal/conversation"
)

func TestAskMapsResponse(t *testing.T) {
	var got askRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/assistant", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reply":   "All systems nominal.",
			"actions": []string{"Self-check complete."},
			"intent":  "status",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	reply, err := c.Ask(context.Background(), "status report", []conversation.Message{
		{Role: conversation.RoleUser, Content: "earlier"},
	})
	require.NoError(t, err)

	require.Equal(t, "status report", got.Message)
	require.Len(t, got.History, 1)
	require.Equal(t, "user", got.History[0].Role)

	require.Equal(t, "All systems nominal.", reply.Text)
	require.Equal(t, []string{"Self-check complete."}, reply.Notices)
	require.Equal(t, "status", reply.Intent)
	require.True(t, reply.Speak, "absent speak field defaults to true")
}

func TestAskSpeakOnlyLiteralFalseSuppresses(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{body: `{"reply":"x"}`, want: true},
		{body: `{"reply":"x","speak":true}`, want: true},
		{body: `{"reply":"x","speak":false}`, want: false},
	}
	for _, tc := range cases {
		body := tc.body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c, err := NewClient(srv.URL)
		require.NoError(t, err)

		reply, err := c.Ask(context.Background(), "hi", nil)
		require.NoError(t, err)
		require.Equal(t, tc.want, reply.Speak, "body=%s", body)
		srv.Close()
	}
}

func TestAskNonSuccessStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "assistant processing failure", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "status report", nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.HTTPStatusCode())
}

func TestAskTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "status report", nil)
	require.Error(t, err)
}

func TestNewClientRejectsEmptyURL(t *testing.T) {
	_, err := NewClient("   ")
	require.Error(t, err)
}
