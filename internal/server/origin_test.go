package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/logging"
)

func requestWithOrigin(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", http.NoBody)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestOriginPolicy(t *testing.T) {
	policy := NewOriginPolicy([]string{"https://Chat.Example.com", "not a url", ""}, logging.Discard())

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "exact", origin: "https://chat.example.com", want: true},
		{name: "case insensitive", origin: "HTTPS://CHAT.EXAMPLE.COM", want: true},
		{name: "other scheme", origin: "http://chat.example.com", want: false},
		{name: "other host", origin: "https://evil.example.com", want: false},
		{name: "missing header", origin: "", want: false},
		{name: "garbage header", origin: "::::", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, policy.CheckOrigin(requestWithOrigin(tt.origin)))
		})
	}
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	policy := NewOriginPolicy([]string{"*"}, logging.Discard())

	require.True(t, policy.CheckOrigin(requestWithOrigin("https://anything.example")))
	require.True(t, policy.CheckOrigin(requestWithOrigin("")))
}
