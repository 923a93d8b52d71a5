package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"charhub/pkg/models"
)

// DefaultBaseURL is where the proxy listens by default.
const DefaultBaseURL = "http://localhost:3000"

// Filter is the filter form. Empty values mean "no filter".
type Filter struct {
	Status  string
	Species string
	Gender  string
}

// APIError is a non-2xx answer from the proxy.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.URL, e.Status, e.Body)
}

// APIClient calls the proxy service.
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Characters runs a filter query against the remote character listing.
// All three parameters are sent, empty ones included.
func (a *APIClient) Characters(ctx context.Context, f Filter) ([]models.Character, error) {
	q := url.Values{}
	q.Set("status", f.Status)
	q.Set("species", f.Species)
	q.Set("gender", f.Gender)

	var out []models.Character
	if err := a.doJSON(ctx, http.MethodGet, "/api/characters?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) ListPersonajes(ctx context.Context) ([]models.Character, error) {
	var out []models.Character
	if err := a.doJSON(ctx, http.MethodGet, "/api/personajes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) CreatePersonaje(ctx context.Context, f Fields) (models.Character, error) {
	var out models.Character
	if err := a.doJSON(ctx, http.MethodPost, "/api/personajes", f.patch(), &out); err != nil {
		return models.Character{}, err
	}
	return out, nil
}

func (a *APIClient) UpdatePersonaje(ctx context.Context, id int64, f Fields) (models.Character, error) {
	var out models.Character
	path := "/api/personajes/" + strconv.FormatInt(id, 10)
	if err := a.doJSON(ctx, http.MethodPut, path, f.patch(), &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return models.Character{}, ErrNotFound
		}
		return models.Character{}, err
	}
	return out, nil
}

func (a *APIClient) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := a.BaseURL + path

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method: method,
			URL:    endpoint,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
