package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/ytdigest/internal/types"
)

func newServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	var seen map[string]any
	srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"},"finish_reason":"stop"}]}`, &seen)

	got, err := New("k", "", srv.URL+"/v1").Complete(context.Background(), "instr", "text")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, got)

	assert.Equal(t, DefaultModel, seen["model"])
	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, map[string]any{"type": "json_object"}, seen["response_format"])
}

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit_error"}}`, types.ErrRateLimited},
		{"server", http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`, types.ErrServer},
		{"no choices", http.StatusOK, `{"id":"x","choices":[]}`, types.ErrLookup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil)
			_, err := New("k", "m", srv.URL+"/v1").Complete(context.Background(), "s", "u")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
