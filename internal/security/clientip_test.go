package security

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote only", "", "10.1.2.3:5555", "10.1.2.3"},
		{"forwarded first entry", "203.0.113.9, 10.0.0.1", "10.1.2.3:5555", "203.0.113.9"},
		{"forwarded single", "198.51.100.4", "10.1.2.3:5555", "198.51.100.4"},
		{"blank forwarded entry", " ,10.0.0.1", "10.1.2.3:5555", "10.1.2.3"},
		{"remote without port", "", "10.1.2.3", "10.1.2.3"},
		{"ipv6 remote", "", "[::1]:8080", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/token", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
