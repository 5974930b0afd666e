// Package preview derives best-effort link previews. Resolution is a
// background refinement: link creation never waits on it, and absence of a
// preview is a normal, non-error outcome.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"linkvault/pkg/utils"
)

const faviconLookupFormat = "https://www.google.com/s2/favicons?domain=%s&sz=64"

// Preview is the enrichment derived for a URL. No title or description
// scraping is attempted beyond what a manual form-fill provides.
type Preview struct {
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
}

type Resolver struct {
	client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FaviconURL returns the deterministic domain-keyed favicon reference for a
// normalized URL, or "" when the domain cannot be derived.
func FaviconURL(normalizedURL string) string {
	domain := utils.Domain(normalizedURL)
	if domain == "" {
		return ""
	}
	return fmt.Sprintf(faviconLookupFormat, domain)
}

// Resolve normalizes the URL and derives its favicon reference, probing the
// favicon endpoint so that dead lookups don't get patched into the record.
// Probe failures degrade to a preview without a favicon rather than an error.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Preview, error) {
	normalized, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	p := &Preview{URL: normalized}

	favicon := FaviconURL(normalized)
	if favicon == "" {
		return p, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, favicon, nil)
	if err != nil {
		return p, nil
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return p, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		p.Favicon = favicon
	}
	return p, nil
}
