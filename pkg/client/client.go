package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/naveenspark/busline/pkg/domain"
)

// DefaultBaseURL is the API root used when no other is configured.
const DefaultBaseURL = "http://localhost:5001/api"

// DefaultTimeout bounds every HTTP round trip.
const DefaultTimeout = 30 * time.Second

// Client is the busline API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	flight     *singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the round-trip timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new API client. token may be empty for the auth endpoints.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.New(slog.DiscardHandler),
		flight: &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token.
// The copy shares the HTTP client and the in-flight request group.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token the client sends, if any.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login authenticates with email and password.
// A 2xx response without a token yields ErrUnexpectedResponse.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var env envelope[LoginResult]
	if err := c.post(ctx, "/auth/login", req, &env); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if env.Data.Token == "" {
		return nil, fmt.Errorf("client.Login: %w", ErrUnexpectedResponse)
	}
	env.Data.Message = env.Message
	return &env.Data, nil
}

// Register creates a new account and returns the server message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var env envelope[json.RawMessage]
	if err := c.post(ctx, "/auth/register", req, &env); err != nil {
		return "", fmt.Errorf("client.Register: %w", err)
	}
	return env.Message, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// --- Trips ---

// SearchTrips fetches one page of trips matching q.
func (c *Client) SearchTrips(ctx context.Context, q TripQuery) (*domain.TripPage, error) {
	var env envelope[domain.TripPage]
	if err := c.get(ctx, "/user/trips?"+q.Values().Encode(), &env); err != nil {
		return nil, fmt.Errorf("client.SearchTrips: %w", err)
	}
	if env.Data.Data == nil {
		env.Data.Data = []domain.Trip{}
	}
	return &env.Data, nil
}

// GetTrip fetches a single trip by ID.
func (c *Client) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	var env envelope[domain.Trip]
	if err := c.get(ctx, "/user/trips/"+url.PathEscape(id), &env); err != nil {
		return nil, fmt.Errorf("client.GetTrip: %w", err)
	}
	return &env.Data, nil
}

// GetBus fetches a single bus by ID.
func (c *Client) GetBus(ctx context.Context, id string) (*domain.Bus, error) {
	var env envelope[domain.Bus]
	if err := c.get(ctx, "/user/buses/"+url.PathEscape(id), &env); err != nil {
		return nil, fmt.Errorf("client.GetBus: %w", err)
	}
	return &env.Data, nil
}

// --- Bookings ---

// CreateBooking books seats on a trip. The call is atomic from the client's
// point of view: either every seat is booked or an error is returned.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/user/bookings/"+url.PathEscape(req.TripID), req, &raw); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	var b domain.Booking
	if err := decodeRecord(raw, &b); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	return &b, nil
}

// ListBookings returns every booking of the authenticated user.
func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var env envelope[[]domain.Booking]
	if err := c.get(ctx, "/user/bookings", &env); err != nil {
		return nil, fmt.Errorf("client.ListBookings: %w", err)
	}
	if env.Data == nil {
		return []domain.Booking{}, nil
	}
	return env.Data, nil
}

// GetBooking fetches a single booking by ID.
func (c *Client) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var env envelope[*domain.Booking]
	if err := c.get(ctx, "/user/bookings/"+url.PathEscape(id), &env); err != nil {
		return nil, fmt.Errorf("client.GetBooking: %w", err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("client.GetBooking: %w", ErrNotFound)
	}
	return env.Data, nil
}

// CancelBooking cancels every remaining seat of a booking.
func (c *Client) CancelBooking(ctx context.Context, id string) (*CancellationResult, error) {
	var res CancellationResult
	if err := c.doRequest(ctx, http.MethodDelete, "/user/bookings/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, fmt.Errorf("client.CancelBooking: %w", err)
	}
	return &res, nil
}

// CancelSeat cancels a single seat of a booking.
func (c *Client) CancelSeat(ctx context.Context, bookingID string, seat int) (*CancellationResult, error) {
	body := cancelSeatsRequest{SeatNumbers: []int{seat}}
	var res CancellationResult
	if err := c.doRequest(ctx, http.MethodDelete, "/user/tickets/"+url.PathEscape(bookingID), body, &res); err != nil {
		return nil, fmt.Errorf("client.CancelSeat: %w", err)
	}
	return &res, nil
}

// --- transport ---

// envelope is the {success, message, data} wrapper every endpoint uses.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// decodeRecord decodes a record that may or may not be wrapped in an envelope.
func decodeRecord(raw json.RawMessage, out any) error {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		raw = env.Data
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// get collapses identical in-flight GETs made with the same token into one
// round trip; each caller decodes its own copy of the body.
func (c *Client) get(ctx context.Context, path string, out any) error {
	key := c.token + "\x00" + path
	v, err, shared := c.flight.Do(key, func() (any, error) {
		return c.send(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.Debug("shared in-flight request", "path", path)
	}
	return decodeBody(v.([]byte), out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeBody(data, out)
}

func decodeBody(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs one round trip and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // 8 MB max body
	if resp.StatusCode >= 400 {
		if err != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
		}
		return nil, newHTTPError(resp.StatusCode, respBody)
	}
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

// Values encodes the query the way the trips endpoint expects it.
func (q TripQuery) Values() url.Values {
	minPrice, maxPrice := q.MinPrice, q.MaxPrice
	if minPrice == "" {
		minPrice = DefaultMinPrice
	}
	if maxPrice == "" {
		maxPrice = DefaultMaxPrice
	}
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = domain.PageSizes[0]
	}

	params := url.Values{}
	params.Set("from", q.From)
	params.Set("to", q.To)
	params.Set("startDateTime", q.StartDate)
	params.Set("endDateTime", q.EndDate)
	params.Set("minPrice", minPrice)
	params.Set("maxPrice", maxPrice)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params
}
