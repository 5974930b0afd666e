package utils

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"scheme preserved", "https://example.com/path", "https://example.com/path", false},
		{"http preserved", "http://example.com", "http://example.com", false},
		{"scheme prepended", "example.com", "https://example.com", false},
		{"scheme prepended with path", "example.com/a?b=c", "https://example.com/a?b=c", false},
		{"whitespace trimmed", "  example.com  ", "https://example.com", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"no host", "https://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, got, tt.want)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	assert.Equal(t, Domain("https://example.com/a/b"), "example.com")
	assert.Equal(t, Domain("https://sub.example.com:8080/x"), "sub.example.com")
	assert.Equal(t, Domain("://bad"), "")
}
