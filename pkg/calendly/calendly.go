// Package calendly is a minimal client for the Calendly REST API, covering
// the calls the scheduling workflow needs: resolving the organizer and
// listing open times for an event type.
package calendly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	BaseURL string        `split_words:"true" default:"https://api.calendly.com"`
	APIKey  string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`

	UserURI       string `envconfig:"USER_URI" split_words:"true"`
	NewPatientURI string `envconfig:"EVENT_TYPE_60_MIN_URI" split_words:"true"`
	ReturningURI  string `envconfig:"EVENT_TYPE_30_MIN_URI" split_words:"true"`
	LookaheadDays int    `split_words:"true" default:"7"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("calendly base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("calendly api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// WithHTTPClient swaps the underlying HTTP client, for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

type userResponse struct {
	Resource struct {
		URI string `json:"uri"`
	} `json:"resource"`
}

// CurrentUser resolves the organizer URI for the configured API key.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	var out userResponse
	if err := c.get(ctx, "/users/me", nil, &out); err != nil {
		return "", err
	}
	if out.Resource.URI == "" {
		return "", errors.New("calendly: user response missing uri")
	}
	return out.Resource.URI, nil
}

type availableTimesResponse struct {
	Collection []struct {
		Status    string    `json:"status"`
		StartTime time.Time `json:"start_time"`
	} `json:"collection"`
}

// AvailableTimes lists the open start times for an event type within the
// window. Calendly caps the window at 7 days server-side.
func (c *Client) AvailableTimes(
	ctx context.Context,
	userURI string,
	eventTypeURI string,
	start time.Time,
	end time.Time,
) ([]time.Time, error) {
	if strings.TrimSpace(eventTypeURI) == "" {
		return nil, errors.New("calendly: event type uri is required")
	}

	params := url.Values{}
	if strings.TrimSpace(userURI) != "" {
		params.Set("user", userURI)
	}
	params.Set("event_type", eventTypeURI)
	params.Set("start_time", start.UTC().Format(time.RFC3339))
	params.Set("end_time", end.UTC().Format(time.RFC3339))

	var out availableTimesResponse
	if err := c.get(ctx, "/event_type_available_times", params, &out); err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(out.Collection))
	for _, entry := range out.Collection {
		if entry.Status != "" && entry.Status != "available" {
			continue
		}
		times = append(times, entry.StartTime)
	}
	return times, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("calendly: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendly: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("calendly: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendly: %s: decode response: %w", path, err)
	}
	return nil
}
