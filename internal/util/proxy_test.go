package util

import (
	"net/http"
	"net/url"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost, .internal.lan")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"http uses http proxy", "http://api.example.com/v1", "http://proxy:3128"},
		{"https uses https proxy", "https://api.openai.com/v1", "http://secure-proxy:3128"},
		{"no_proxy exact host", "http://localhost:11434/api/generate", ""},
		{"no_proxy domain suffix", "https://dav.internal.lan/remote.php", ""},
		{"suffix does not match partial label", "https://notinternal.lan/", "http://secure-proxy:3128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := url.Parse(tt.target)
			got, err := proxy(&http.Request{URL: u})
			if err != nil {
				t.Fatalf("proxy func failed: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected direct connection, got %v", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}

func TestNewProxyFunc_HTTPOnlyFallsBackForHTTPS(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "", "")
	u, _ := url.Parse("https://api.anthropic.com/v1/messages")

	got, err := proxy(&http.Request{URL: u})
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if got == nil || got.Host != "proxy:3128" {
		t.Errorf("expected http proxy for https without https proxy, got %v", got)
	}
}
