// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ollama/ollama/api"
)

// DefaultBaseURL uses an explicit IPv4 address to avoid IPv6 resolution
// issues on Windows.
const DefaultBaseURL = "http://127.0.0.1:11434"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434).
	// A bare host:port is accepted.
	BaseURL string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// StreamIdleTimeout is the longest a chat stream may go without
	// producing a chunk, including the wait for the first one while the
	// model loads (default: 2m).
	StreamIdleTimeout time.Duration

	// Options are model parameters sent with every chat request,
	// e.g. "temperature" or "num_predict".
	Options map[string]any
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           30 * time.Second,
		StreamIdleTimeout: 2 * time.Minute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API. It is safe for
// concurrent use.
type Client struct {
	config *ClientConfig
	base   *url.URL
	api    *api.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	c, _ := NewClientWithConfig(DefaultConfig())
	return c
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
// Zero values are filled from DefaultConfig.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.StreamIdleTimeout <= 0 {
		cfg.StreamIdleTimeout = defaults.StreamIdleTimeout
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = base.String()

	// No client-level timeout: streams are bounded by the idle watchdog and
	// other calls by a per-request context deadline.
	return &Client{
		config: &cfg,
		base:   base,
		api:    api.NewClient(base, &http.Client{}),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid Ollama URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL %q: missing host", raw)
	}
	return u, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.Timeout)
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	if err := c.api.Heartbeat(ctx); err != nil {
		log.Debug("ollama heartbeat failed", "url", c.config.BaseURL, "err", err)
		return wrapError("health check", err)
	}
	return nil
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	v, err := c.api.Version(ctx)
	if err != nil {
		return "", wrapError("version", err)
	}
	return v, nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves the installed models in the order the server
// reports them.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, wrapError("list models", err)
	}

	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, modelFromAPI(m))
	}
	log.Debug("listed models", "count", len(models))
	return models, nil
}

// GetModel retrieves details about a specific installed model.
func (c *Client) GetModel(ctx context.Context, name string) (*ModelDetails, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	resp, err := c.api.Show(ctx, &api.ShowRequest{Model: name})
	if err != nil {
		return nil, wrapError("show model", err)
	}
	details := detailsFromAPI(resp.Details)
	return &details, nil
}

// ModelExists checks if a model is available locally.
func (c *Client) ModelExists(ctx context.Context, name string) bool {
	_, err := c.GetModel(ctx, name)
	return err == nil
}

// PullModel downloads a model from the registry, reporting progress to
// onProgress. A non-nil error from onProgress aborts the pull.
func (c *Client) PullModel(ctx context.Context, name string, onProgress func(PullProgress) error) error {
	log.Debug("pulling model", "model", name)

	err := c.api.Pull(ctx, &api.PullRequest{Model: name}, func(p api.ProgressResponse) error {
		if onProgress == nil {
			return nil
		}
		return onProgress(PullProgress{
			Status:    p.Status,
			Digest:    p.Digest,
			Total:     p.Total,
			Completed: p.Completed,
		})
	})
	if err != nil {
		return wrapError("pull "+name, err)
	}
	return nil
}
