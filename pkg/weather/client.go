package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/model"
)

const DefaultBaseURL = "https://api.weatherapi.com/v1"

var (
	ErrMissingAPIKey = errors.New("weather api key missing")
	ErrUpstream      = errors.New("weather upstream error")
)

type (
	Client struct {
		apiKey     string
		baseURL    string
		httpClient *http.Client
		newBackOff func() backoff.BackOff
		l          *log.Logger
	}
	ClientOption func(*Client)
)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackOff sets the retry policy used for transient upstream failures.
func WithBackOff(f func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = f
	}
}

func WithClientLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.l = l
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return backoff.WithMaxRetries(b, 4)
		},
		l: log.Default().Named("weather"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current fetches the current conditions for location.
// Network errors and 5xx responses are retried, 4xx responses are not.
func (c *Client) Current(ctx context.Context, location string) (*model.WeatherReport, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("aqi", "no")
	reqURL := fmt.Sprintf("%s/current.json?%s", c.baseURL, q.Encode())

	var report *model.WeatherReport
	attempt := 0
	op := func() error {
		attempt++
		r, err := c.fetch(ctx, reqURL)
		if err != nil {
			c.l.Warn("weather fetch failed",
				log.String("location", location),
				log.Int("attempt", attempt),
				log.ErrorField(err))
			return err
		}
		report = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	c.l.Debug("weather fetched",
		log.String("location", report.Location.Name),
		log.Float64("temp", report.Current.TempC))
	return report, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*model.WeatherReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	var report model.WeatherReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: decode: %w", ErrUpstream, err))
	}
	return &report, nil
}
