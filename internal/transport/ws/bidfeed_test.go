package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSameHostOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{name: "no origin header", origin: "", host: "shop.example", want: true},
		{name: "matching host", origin: "https://shop.example", host: "shop.example", want: true},
		{name: "matching host with port", origin: "http://shop.example:8080", host: "shop.example:8080", want: true},
		{name: "case-insensitive match", origin: "https://Shop.Example", host: "shop.example", want: true},
		{name: "foreign host", origin: "https://evil.example", host: "shop.example", want: false},
		{name: "port mismatch", origin: "http://shop.example:9999", host: "shop.example:8080", want: false},
		{name: "unparseable origin", origin: "://not-a-url", host: "shop.example", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/products/p-1/bids", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			if got := sameHostOrigin(req); got != tt.want {
				t.Errorf("sameHostOrigin(origin=%q, host=%q) = %v, want %v", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}
