// Package explain looks up documentation for commands missing from the
// local index. It is never invoked during indexing.
package explain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public mankier.com API endpoint.
const DefaultBaseURL = "https://www.mankier.com"

// Client is an external lookup capability: one request, one plain-text
// response, or a not-found signal.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against the public endpoint.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint, used in tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Lookup fetches an explanation for a command line. found is false when the
// service has nothing for it; err is reserved for transport failures.
func (c *Client) Lookup(ctx context.Context, input string) (text string, found bool, err error) {
	u := c.baseURL + "/api/explain/?q=" + url.QueryEscape(input)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build explain request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("explain lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("explain lookup failed: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false, fmt.Errorf("failed to read explain response: %w", err)
	}

	text = stripAttribution(string(body))
	if strings.TrimSpace(text) == "" {
		return "", false, nil
	}
	return text, true, nil
}

// stripAttribution removes the trailing attribution lines the explain
// endpoint appends to its plain-text output.
func stripAttribution(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) >= 2 {
		lines = lines[:len(lines)-2]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
