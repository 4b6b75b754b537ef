package comfyui

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
	"strings"
	"time"
)

// QueueMonitor is the read side of the remote API. It is implemented by
// *Client and lets the poller be tested against fakes.
type QueueMonitor interface {
	QueueStatus(ctx context.Context) (QueueSnapshot, error)
	SystemStats(ctx context.Context) (SystemStats, error)
	History(ctx context.Context, maxItems int) (HistoryPage, error)
}

// Controller adds the operations with side effects on the remote server.
type Controller interface {
	QueueMonitor
	Address() string
	ServerInfo(ctx context.Context) (ServerInfo, error)
	Interrupt(ctx context.Context) (InterruptResult, error)
}

var _ Controller = (*Client)(nil)

const (
	httpPrefix          = "http://"
	defaultUserAgent    = "comfyq/0.1"
	DefaultHistoryItems = 100
)

// Client talks to the ComfyUI HTTP API.
type Client struct {
	baseURL   string
	address   string
	http      *http.Client
	userAgent string
	log       *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets a transport-level timeout on a copy of the current
// http.Client, so a shared client passed to WithHTTPClient is left alone.
// Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// NewClient builds a Client for baseURL, e.g. "http://127.0.0.1:8188".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		address:   serverAddress(baseURL),
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the resolved host[:port] the client targets.
func (c *Client) Address() string {
	return c.address
}

// BaseURL returns the URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// QueueStatus fetches /queue and counts running and pending jobs.
func (c *Client) QueueStatus(ctx context.Context) (QueueSnapshot, error) {
	const op = "queue status"
	var payload struct {
		QueueRunning []JobRecord `json:"queue_running"`
		QueuePending []JobRecord `json:"queue_pending"`
	}
	if err := c.getJSON(ctx, op, &url.URL{Path: "/queue"}, &payload); err != nil {
		return QueueSnapshot{}, err
	}
	snap := newQueueSnapshot(payload.QueueRunning, payload.QueuePending)
	c.log.Info("queue status", "running", snap.Running, "pending", snap.Pending, "total", snap.Total)
	return snap, nil
}

// SystemStats fetches /system_stats and returns the body unmodified.
func (c *Client) SystemStats(ctx context.Context) (SystemStats, error) {
	const op = "system stats"
	var stats SystemStats
	if err := c.getJSON(ctx, op, &url.URL{Path: "/system_stats"}, &stats); err != nil {
		return nil, err
	}
	c.log.Info("system stats fetched")
	return stats, nil
}

// ServerInfo probes / for liveness. The body is not JSON and is discarded.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	const op = "server info"
	if _, err := c.call(ctx, op, http.MethodGet, &url.URL{Path: "/"}, false); err != nil {
		return ServerInfo{}, err
	}
	c.log.Info("server reachable", "address", c.address)
	return ServerInfo{
		ServerAddress: c.address,
		Status:        StatusConnected,
		URL:           c.baseURL,
	}, nil
}

// Interrupt cancels the job the server is currently executing. It is not
// idempotent and must not be retried blindly.
func (c *Client) Interrupt(ctx context.Context) (InterruptResult, error) {
	const op = "interrupt"
	body, err := c.call(ctx, op, http.MethodPost, &url.URL{Path: "/interrupt"}, true)
	if err != nil {
		return InterruptResult{}, err
	}
	result := decodeInterrupt(body)
	c.log.Info("current task interrupted", "decoded", result.Decoded)
	return result, nil
}

// History fetches /history. max_items is sent for any non-zero maxItems,
// negative values included; zero leaves the limit to the server.
func (c *Client) History(ctx context.Context, maxItems int) (HistoryPage, error) {
	const op = "queue history"
	rel := &url.URL{Path: "/history"}
	if maxItems != 0 {
		rel.RawQuery = "max_items=" + strconv.Itoa(maxItems)
	}
	body, err := c.call(ctx, op, http.MethodGet, rel, true)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, c.fail(op, http.MethodGet, rel, 0, fmt.Errorf("decode response: invalid JSON"))
	}
	page := HistoryPage(body)
	c.log.Info("queue history fetched", "entries", page.Len())
	return page, nil
}

func (c *Client) getJSON(ctx context.Context, op string, rel *url.URL, dest any) error {
	body, err := c.call(ctx, op, http.MethodGet, rel, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return c.fail(op, http.MethodGet, rel, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// call performs one round trip. The body is only read when readBody is set.
func (c *Client) call(ctx context.Context, op, method string, rel *url.URL, readBody bool) ([]byte, error) {
	reqURL := c.endpoint(rel)
	c.log.Debug(op, "method", method, "url", reqURL)

	var reqBody io.Reader
	if method == http.MethodPost {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, c.fail(op, method, rel, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	if readBody {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(op, method, rel, 0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, c.fail(op, method, rel, resp.StatusCode, fmt.Errorf("returned status %d", resp.StatusCode))
	}
	if !readBody {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(op, method, rel, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	return body, nil
}

func (c *Client) fail(op, method string, rel *url.URL, status int, cause error) error {
	err := &RemoteCallError{
		Op:         op,
		Method:     method,
		URL:        c.endpoint(rel),
		StatusCode: status,
		Err:        cause,
	}
	c.log.Error(op+" failed", "url", err.URL, "error", cause)
	return err
}

func (c *Client) endpoint(rel *url.URL) string {
	return httpPrefix + c.address + rel.String()
}

// serverAddress strips a literal http:// prefix. Other schemes are kept.
func serverAddress(baseURL string) string {
	if strings.HasPrefix(baseURL, httpPrefix) {
		return baseURL[len(httpPrefix):]
	}
	return baseURL
}
