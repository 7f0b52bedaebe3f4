// Package maps is a client for the Google Maps Platform Distance Matrix,
// Directions and Geocoding web services.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"ridepool/internal/domain"
	"ridepool/internal/metrics"
)

// DefaultBaseURL is the Google Maps Platform web service host.
const DefaultBaseURL = "https://maps.googleapis.com"

// Operation names used in errors, logs and metrics.
const (
	OpDistance = "distance"
	OpRoute    = "route"
	OpGeocode  = "geocode"
)

const (
	distanceMatrixPath = "/maps/api/distancematrix/json"
	directionsPath     = "/maps/api/directions/json"
	geocodePath        = "/maps/api/geocode/json"

	defaultTimeout       = 5 * time.Second
	defaultRetryInterval = 200 * time.Millisecond
	maxErrorBody         = 4 << 10
)

// Config configures a Client.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration // per attempt
	MaxRetries    int
	RetryInterval time.Duration // initial backoff interval
}

// Client talks to the Google Maps Platform web services.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewClient creates a new Client. A nil httpClient uses a plain http.Client.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		timeout:       cfg.Timeout,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retryInterval <= 0 {
		c.retryInterval = defaultRetryInterval
	}
	if cfg.MaxRetries > 0 {
		c.maxRetries = uint64(cfg.MaxRetries)
	}
	return c
}

// Distance returns the road distance in meters between two coordinates.
func (c *Client) Distance(ctx context.Context, origin, destination domain.Coordinate) (float64, error) {
	query := origin.String() + " -> " + destination.String()
	params := url.Values{}
	params.Set("units", "metric")
	params.Set("origins", origin.String())
	params.Set("destinations", destination.String())

	var resp distanceMatrixResponse
	if err := c.call(ctx, OpDistance, distanceMatrixPath, query, params, &resp); err != nil {
		return 0, err
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, &Error{Op: OpDistance, Query: query, Status: StatusZeroResults}
	}
	element := resp.Rows[0].Elements[0]
	if element.Status != StatusOK {
		return 0, &Error{Op: OpDistance, Query: query, Status: element.Status}
	}
	return element.Distance.Value, nil
}

// Route returns the first Directions route between two coordinates, verbatim.
func (c *Client) Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error) {
	query := origin.String() + " -> " + destination.String()
	params := url.Values{}
	params.Set("origin", origin.String())
	params.Set("destination", destination.String())

	var resp directionsResponse
	if err := c.call(ctx, OpRoute, directionsPath, query, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, &Error{Op: OpRoute, Query: query, Status: StatusZeroResults}
	}
	return resp.Routes[0], nil
}

// Geocode resolves an address to the coordinate of its best match.
func (c *Client) Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error) {
	query := address.Query()
	params := url.Values{}
	params.Set("address", query)

	var resp geocodeResponse
	if err := c.call(ctx, OpGeocode, geocodePath, query, params, &resp); err != nil {
		return domain.Coordinate{}, err
	}
	if len(resp.Results) == 0 {
		return domain.Coordinate{}, &Error{Op: OpGeocode, Query: query, Status: StatusZeroResults}
	}
	loc := resp.Results[0].Geometry.Location
	return domain.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// call performs a GET with retries on transient failures. Every error it
// returns is an *Error.
func (c *Client) call(ctx context.Context, op, path, query string, params url.Values, out apiResponse) error {
	start := time.Now()

	attempt := func() error {
		err := c.fetch(ctx, op, path, query, params, out)
		var apiErr *Error
		if err != nil && errors.As(err, &apiErr) && !apiErr.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)

	err := backoff.RetryNotify(attempt, b, func(err error, wait time.Duration) {
		metrics.RoutingRetry(op)
		c.logger.Debug("retrying routing call",
			zap.String("op", op),
			zap.String("query", query),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	metrics.ObserveRoutingCall(op, err, time.Since(start))

	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			err = &Error{Op: op, Query: query, Err: err}
		}
		return err
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, op, path, query string, params url.Values, out apiResponse) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := make(url.Values, len(params)+1)
	for k, v := range params {
		q[k] = v
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return &Error{Op: op, Query: query, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Per-attempt timeouts are worth retrying; a cancelled caller is not.
		return &Error{Op: op, Query: query, Err: err, transient: ctx.Err() == nil}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Op:         op,
			Query:      query,
			HTTPStatus: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			transient:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Query: query, Err: fmt.Errorf("decode response: %w", err)}
	}

	if status, message := out.apiStatus(); status != StatusOK {
		return &Error{Op: op, Query: query, Status: status, Message: message, transient: transientStatus(status)}
	}
	return nil
}
