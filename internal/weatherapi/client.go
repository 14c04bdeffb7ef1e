package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.weatherapi.com/v1/"
	defaultTimeout = 10 * time.Second

	searchEndpoint  = "search.json"
	currentEndpoint = "current.json"
)

var (
	ErrMissingAPIKey = errors.New("weatherapi: api key is not configured")
	ErrCircuitOpen   = errors.New("weatherapi: circuit breaker open")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weatherapi: status %d", e.StatusCode)
	}
	return fmt.Sprintf("weatherapi: status %d: code %d: %s", e.StatusCode, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Breaker trips after this many consecutive failures. Zero means 5.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client talks to WeatherAPI.com. Every failure is returned to the caller;
// nothing is retried here.
type Client struct {
	http    *resty.Client
	circuit *gobreaker.CircuitBreaker
	l       *logger.Logger
}

func NewClient(opts Options, l *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	// The key rides on every request so call sites never see it.
	hc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetQueryParam("key", apiKey)
		return nil
	})
	hc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		fields := map[string]any{
			"status":   resp.StatusCode(),
			"duration": resp.Time().String(),
			"bytes":    len(resp.Body()),
		}
		if raw := resp.Request.RawRequest; raw != nil {
			fields["path"] = raw.URL.Path
		}
		l.Debug("weatherapi response", fields)
		return nil
	})

	failures := opts.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warning("circuit breaker state changed", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		http:    hc,
		circuit: cb,
		l:       l,
	}, nil
}

// SearchLocations calls search.json. An empty match list is not an error.
func (c *Client) SearchLocations(ctx context.Context, text string) ([]models.Location, error) {
	locations := []models.Location{}
	if err := c.get(ctx, searchEndpoint, text, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Current calls current.json. query is free text or "id:<n>".
func (c *Client) Current(ctx context.Context, query string) (models.WeatherRecord, error) {
	var record models.WeatherRecord
	if err := c.get(ctx, currentEndpoint, query, &record); err != nil {
		return models.WeatherRecord{}, err
	}
	return record, nil
}

func (c *Client) get(ctx context.Context, endpoint, query string, out any) error {
	// Cancellation by the caller must not count against the remote.
	var abandoned error

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("q", query).
			Get(endpoint)
		if err != nil {
			if ctx.Err() != nil {
				abandoned = err
				return nil, nil
			}
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests {
			return nil, newAPIError(resp)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return fmt.Errorf("%s q=%q: %w", endpoint, query, err)
	}
	if abandoned != nil {
		return fmt.Errorf("%s q=%q: %w", endpoint, query, abandoned)
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return fmt.Errorf("%s q=%q: unexpected result type %T", endpoint, query, result)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%s q=%q: %w", endpoint, query, newAPIError(resp))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s q=%q: decode response: %w", endpoint, query, err)
	}
	return nil
}
