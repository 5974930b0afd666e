// Package httpapi implements the gateway interfaces over the linkvault REST
// API. This is the client half of the system: the synchronization store talks
// to a remote document store through these types.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linkvault/pkg/gateway"
)

// Client is an HTTP client for interacting with the linkvault API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	// Remove trailing slash from base URL
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Collections returns the container/link side of the API.
func (c *Client) Collections() *Collections { return &Collections{c: c} }

// Sharing returns the invitation/grant side of the API.
func (c *Client) Sharing() *Sharing { return &Sharing{c: c} }

// ShareLinks returns the token-based share link side of the API.
func (c *Client) ShareLinks() *ShareLinks { return &ShareLinks{c: c} }

// Directory returns the user display-name resolver.
func (c *Client) Directory() *Directory { return &Directory{c: c} }

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, gateway.NewGatewayError("failed to create request", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	// Only set Authorization header if API key is provided
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	return req, nil
}

// doRequest performs an HTTP request, mapping failure statuses back into the
// gateway error taxonomy.
func (c *Client) doRequest(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gateway.NewGatewayError("request failed", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gateway.NewGatewayError("failed to read response", err)
	}

	// Check for HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, resp.Status, body)
	}

	// Parse JSON response if result is provided
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return gateway.NewGatewayError("failed to parse response", err)
		}
	}

	return nil
}

func statusError(statusCode int, status string, body []byte) error {
	msg := status
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		msg = errorResp.Error
	} else if len(body) > 0 {
		msg = string(body)
	}

	switch statusCode {
	case http.StatusBadRequest:
		return gateway.NewValidationError("%s", msg)
	case http.StatusNotFound:
		return gateway.NewNotFoundError(msg)
	case http.StatusForbidden:
		return gateway.NewPermissionDeniedError(msg)
	case http.StatusGone:
		return gateway.NewExpiredError(msg)
	default:
		return gateway.NewGatewayError(fmt.Sprintf("API error (%d): %s", statusCode, msg), nil)
	}
}

// doJSONRequest performs a JSON request (POST, PUT, PATCH)
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload interface{}, result interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return gateway.NewGatewayError("failed to marshal request", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// doGetRequest performs a GET request
func (c *Client) doGetRequest(ctx context.Context, path string, result interface{}) error {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// doDeleteRequest performs a DELETE request
func (c *Client) doDeleteRequest(ctx context.Context, path string) error {
	req, err := c.buildRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	return c.doRequest(req, nil)
}
