package flagsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// TokenSource returns the bearer token for an authenticated request.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client talks to the flag service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token authenticates the management endpoints. IsEnabled and the
	// health probes work without it.
	Token TokenSource
}

// NewClient creates a client for baseURL with a 10 second request timeout.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// Scopes understood by the management endpoints.
const (
	ScopeFlagsRead  = "flags:read"
	ScopeFlagsWrite = "flags:write"
)
