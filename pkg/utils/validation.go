package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL trims a URL string, prepends https:// when no scheme is
// present, and validates the result, returning the normalized value or an
// error if the URL is empty or unparseable.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL is required")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL: missing host")
	}
	return s, nil
}

// Domain extracts the hostname from a URL, returning "" when it cannot be
// parsed.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
