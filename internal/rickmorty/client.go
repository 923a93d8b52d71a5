package rickmorty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public Rick and Morty API.
const DefaultBaseURL = "https://rickandmortyapi.com"

// DefaultMaxBody caps how much of an upstream response is read. A full
// page of 20 characters is well under 100 KiB.
const DefaultMaxBody int64 = 4 << 20

// Filter holds the query filters accepted by the character endpoint.
// Empty fields mean "no filter".
type Filter struct {
	Status  string
	Species string
	Gender  string
}

// Values encodes the non-empty filters as query parameters.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Species != "" {
		q.Set("species", f.Species)
	}
	if f.Gender != "" {
		q.Set("gender", f.Gender)
	}
	return q
}

// Client talks to the character listing endpoint of the public API (or of
// a mirror serving the same shape).
type Client struct {
	BaseURL string
	HTTP    *http.Client
	MaxBody int64
}

// NewClient returns a client for baseURL. A zero timeout leaves the
// transport defaults in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		MaxBody: DefaultMaxBody,
	}
}

// ListCharacters fetches the first page of characters matching f and
// returns the raw `results` array exactly as the upstream sent it.
func (c *Client) ListCharacters(ctx context.Context, f Filter) (json.RawMessage, error) {
	u, err := url.Parse(c.BaseURL + "/api/character")
	if err != nil {
		return nil, fmt.Errorf("rickmorty: parse url: %w", err)
	}
	u.RawQuery = f.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("rickmorty: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rickmorty: request: %w", err)
	}
	defer resp.Body.Close()

	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("rickmorty: read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("rickmorty: response exceeds %d bytes", limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rickmorty: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("rickmorty: decode: invalid json")
	}

	results := gjson.GetBytes(body, "results")
	if !results.Exists() || results.Type == gjson.Null {
		return json.RawMessage("[]"), nil
	}
	if !results.IsArray() {
		return nil, fmt.Errorf("rickmorty: decode: results is not an array")
	}
	return json.RawMessage(results.Raw), nil
}
