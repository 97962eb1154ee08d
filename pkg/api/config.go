// Package api is the client for the kitlend lending backend REST API.
//
// Every request goes through one generic request path that injects the
// bearer credential, negotiates JSON or text responses and normalizes
// errors. Payload-shape differences between endpoints (direct objects,
// {data: ...} envelopes, {content: [...]} pages) are resolved here so that
// callers only ever see decoded model types.
package api

import "time"

// Default client settings.
const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "kitlend-client/1"
)

// Config holds all configuration for the API client.
type Config struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// UserAgent is sent on every request.
	UserAgent string
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// WithBaseURL returns a copy of the config with the specified base URL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}
