package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultVersion = "v3"
	defaultVariant = "smart"
	defaultTimeout = 10 * time.Second

	// El backend no documenta límites; 20/s con burst 10 alcanza para los
	// cuatro pollers más las acciones del usuario.
	defaultRatePerSec = 20
	defaultBurst      = 10

	defaultMaxRetries = 2
	baseRetryWait     = 250 * time.Millisecond

	maxBodyBytes = 1 << 20
)

// Options configura el Client. Los campos vacíos toman el default.
type Options struct {
	BaseURL       string
	Version       string
	SignalVariant string // "" (v1), "smart" o "advanced"
	Timeout       time.Duration
	RatePerSec    float64
	Burst         int
	MaxRetries    int
	Metrics       ports.Metrics
}

// Client es el HTTP client del backend de trading con timeout, rate limiting
// y retries para GETs. Implementa ports.Backend.
type Client struct {
	http          *http.Client
	baseURL       string
	apiBase       string
	signalVariant string
	limiter       *rate.Limiter
	maxRetries    int
	metrics       ports.Metrics

	mu    sync.RWMutex
	token string
}

// NewClient crea un Client. Si BaseURL está vacío usa http://localhost:8000.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = defaultVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = defaultRatePerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Metrics == nil {
		opts.Metrics = ports.NopMetrics{}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		http:          &http.Client{Timeout: opts.Timeout},
		baseURL:       base,
		apiBase:       base + "/api/" + opts.Version,
		signalVariant: opts.SignalVariant,
		limiter:       rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		maxRetries:    opts.MaxRetries,
		metrics:       opts.Metrics,
	}
}

// BaseURL devuelve la URL raíz del backend (sin /api/...).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken fija el token que se envía como Bearer en cada request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out, c.maxRetries)
}

// post hace un POST JSON sin retries: repetir una compra puede duplicarla.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, body, out, 0)
}

// do ejecuta la request con backoff exponencial para los errores reintentables.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, retries int) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(op, err == nil, time.Since(start))
	}()

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return c.fail(op, method, path, 0, fmt.Errorf("marshal body: %w", err))
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(op, method, path, 0, fmt.Errorf("rate limiter: %w", err))
		}

		status, raw, rtErr := c.roundTrip(ctx, method, path, payload)
		retryable := rtErr != nil || status == http.StatusTooManyRequests || status >= 500
		if retryable && attempt < retries && ctx.Err() == nil {
			slog.Debug("backend request failed, retrying",
				"op", op, "attempt", attempt+1, "status", status, "err", rtErr)
			c.sleep(ctx, attempt)
			continue
		}

		if rtErr != nil {
			return c.fail(op, method, path, 0, rtErr)
		}
		if status >= 400 {
			return c.fail(op, method, path, status, fmt.Errorf("unexpected status: %s", snippet(raw)))
		}
		if msg := bodyError(raw); msg != "" {
			return c.fail(op, method, path, status, fmt.Errorf("%w: %s", domain.ErrRejected, msg))
		}
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return c.fail(op, method, path, status, fmt.Errorf("decode response: %w", err))
			}
		}
		return nil
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) fail(op, method, path string, status int, err error) *Error {
	return &Error{Op: op, Method: method, Path: path, StatusCode: status, Err: err}
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// bodyError extrae el campo "error" que el backend devuelve con status 200.
// Acepta string u objeto {code, message}.
func bodyError(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(trimmed, &env) != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(env.Error, &s) == nil {
		return s
	}
	var obj struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &obj) == nil && (obj.Code != "" || obj.Message != "") {
		if obj.Code == "" {
			return obj.Message
		}
		return obj.Code + ": " + obj.Message
	}
	return string(env.Error)
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
