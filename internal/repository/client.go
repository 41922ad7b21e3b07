// Package repository fetches artifact bytes and detached signatures from an
// artifact repository laid out in the conventional group/artifact/version
// form. It is the only network-facing part of the tool.
package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/artagon/depbaseline/internal/coordinate"
	"github.com/artagon/depbaseline/internal/utils/logger"
	"github.com/artagon/depbaseline/internal/utils/network"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// FetchError reports an artifact or signature that could not be retrieved
// after the bounded retry budget was exhausted.
type FetchError struct {
	Coordinate coordinate.Coordinate
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s from %s: %v", e.Coordinate, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to one artifact repository.
type Client struct {
	baseURL string
	httpc   *http.Client
	retries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default hardened HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpc = c }
}

// WithTimeout sets the per-request deadline on the default client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpc = network.NewSecureHTTPClient(d) }
}

// WithRetries sets the maximum number of fetch attempts per URL.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.retries = uint64(n)
		}
	}
}

// NewClient creates a repository client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   network.NewSecureHTTPClient(defaultTimeout),
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ArtifactURL maps a coordinate to its primary artifact URL.
func (c *Client) ArtifactURL(coord coordinate.Coordinate) string {
	packaging := coord.Packaging
	if packaging == "" {
		packaging = "jar"
	}
	groupPath := strings.ReplaceAll(coord.Group, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.%s",
		c.baseURL, groupPath, coord.Artifact, coord.Version,
		coord.Artifact, coord.Version, packaging)
}

// SignatureURL maps a coordinate to its detached-signature URL.
func (c *Client) SignatureURL(coord coordinate.Coordinate) string {
	return c.ArtifactURL(coord) + ".asc"
}

// FetchArtifact retrieves the primary artifact bytes for coord.
func (c *Client) FetchArtifact(ctx context.Context, coord coordinate.Coordinate) ([]byte, error) {
	url := c.ArtifactURL(coord)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, &FetchError{Coordinate: coord, URL: url, Err: err}
	}
	return body, nil
}

// FetchSignature retrieves the detached signature bytes for coord. Callers
// treat failure as "no key available", not as a fatal condition.
func (c *Client) FetchSignature(ctx context.Context, coord coordinate.Coordinate) ([]byte, error) {
	url := c.SignatureURL(coord)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, &FetchError{Coordinate: coord, URL: url, Err: err}
	}
	return body, nil
}

// get downloads one URL with bounded exponential retry. Missing resources
// (404/410) are permanent and never retried.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	log := logger.Logger()

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			log.Debugf("GET %s attempt %d: %v", url, attempt, err)
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return backoff.Permanent(fmt.Errorf("bad status: %s", resp.Status))
		default:
			log.Debugf("GET %s attempt %d: %s", url, attempt, resp.Status)
			return fmt.Errorf("bad status: %s", resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
