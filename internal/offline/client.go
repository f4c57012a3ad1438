package offline

import (
	"bytes"
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

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	headerDeviceID = "X-Device-ID"
	defaultTimeout = 15 * time.Second
)

// ErrOffline marks a request that never got an HTTP response: the server
// was unreachable or the connection dropped.
var ErrOffline = errors.New("server unreachable")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned HTTP %d: %s", e.StatusCode, e.Message)
}

// IsConnectivityError reports whether err means the server could not be
// reached, as opposed to the server rejecting the request.
func IsConnectivityError(err error) bool {
	return errors.Is(err, ErrOffline)
}

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// API is the set of REST calls the offline library makes.
type API interface {
	Health(ctx context.Context) error
	ListBooks(ctx context.Context) ([]entities.Book, error)
	ListShelves(ctx context.Context) ([]entities.Shelf, error)
	CreateBook(ctx context.Context, input entities.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, id uint, input entities.BookInput) (*entities.Book, error)
	UpdateReview(ctx context.Context, id uint, patch entities.ReviewPatch) (*entities.Book, error)
	CreateQuote(ctx context.Context, input entities.QuoteInput) (*entities.Quote, error)
	UpdateQuote(ctx context.Context, id uint, input entities.QuoteInput) (*entities.Quote, error)
	DeleteQuote(ctx context.Context, id uint) error
}

// Client talks to the bookshelf REST API on behalf of one device.
type Client struct {
	baseURL    string
	deviceID   string
	userAgent  string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client (15s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the server at baseURL acting as deviceID.
func NewClient(baseURL, deviceID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		deviceID:   deviceID,
		userAgent:  "libraryctl",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceID returns the device the client acts as.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// RegisterDevice upserts this device on the server.
func (c *Client) RegisterDevice(ctx context.Context, name string) (*entities.Device, error) {
	var device entities.Device
	body := map[string]string{"device_id": c.deviceID, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/devices", body, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Health checks the server's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	if err := c.do(ctx, http.MethodGet, "/api/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) ListShelves(ctx context.Context) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	if err := c.do(ctx, http.MethodGet, "/api/shelves", nil, &shelves); err != nil {
		return nil, err
	}
	return shelves, nil
}

func (c *Client) CreateBook(ctx context.Context, input entities.BookInput) (*entities.Book, error) {
	var book entities.Book
	if err := c.do(ctx, http.MethodPost, "/api/books", input, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) UpdateBook(ctx context.Context, id uint, input entities.BookInput) (*entities.Book, error) {
	var book entities.Book
	if err := c.do(ctx, http.MethodPut, "/api/books/"+idString(id), input, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) UpdateReview(ctx context.Context, id uint, patch entities.ReviewPatch) (*entities.Book, error) {
	var book entities.Book
	if err := c.do(ctx, http.MethodPatch, "/api/books/"+idString(id)+"/review", patch, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) CreateQuote(ctx context.Context, input entities.QuoteInput) (*entities.Quote, error) {
	var quote entities.Quote
	if err := c.do(ctx, http.MethodPost, "/api/quotes", input, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) UpdateQuote(ctx context.Context, id uint, input entities.QuoteInput) (*entities.Quote, error) {
	var quote entities.Quote
	if err := c.do(ctx, http.MethodPut, "/api/quotes/"+idString(id), input, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) DeleteQuote(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/quotes/"+idString(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set(headerDeviceID, c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled caller is not a connectivity problem
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrOffline, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
