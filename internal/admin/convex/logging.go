package convex

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/convex-panel/panelctl/internal/log"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "Convex-Client-Request-Id"
	maxLoggedBody   = 1000
)

// Doer executes HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoggingHTTPClient wraps an HTTP client, stamping each request with an id
// and tracing request and response metadata.
type LoggingHTTPClient struct {
	wrapped Doer
	logger  *slog.Logger
}

// NewLoggingHTTPClient wraps client. A nil client gets a 60s timeout default.
func NewLoggingHTTPClient(client Doer, logger *slog.Logger) *LoggingHTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingHTTPClient{wrapped: client, logger: logger}
}

func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}
	if !c.logger.Enabled(req.Context(), log.LevelTrace) {
		return c.wrapped.Do(req)
	}

	start := time.Now()
	c.logRequest(req)
	resp, err := c.wrapped.Do(req)
	duration := time.Since(start)
	if err != nil {
		attrs := append(log.RequestLogContextAttrs(req.Context()),
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("request_id", req.Header.Get(requestIDHeader)),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request failed", attrs...)
		return nil, err
	}
	c.logResponse(req, resp, duration)
	return resp, nil
}

func (c *LoggingHTTPClient) logRequest(req *http.Request) {
	attrs := append(log.RequestLogContextAttrs(req.Context()),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", req.Header.Get(requestIDHeader)),
		slog.Any("headers", redact(req.Header, "authorization")),
	)
	if req.Body != nil && req.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("content_length", req.ContentLength))
	}
	c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request", attrs...)
}

func (c *LoggingHTTPClient) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	attrs := append(log.RequestLogContextAttrs(req.Context()),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", req.Header.Get(requestIDHeader)),
		slog.Duration("duration", duration),
		slog.Any("headers", redact(resp.Header, "set-cookie")),
	)
	if resp.StatusCode >= 400 {
		if body, err := peekBody(resp); err == nil && body != "" {
			if len(body) > maxLoggedBody {
				body = fmt.Sprintf("%s... [truncated, total %d bytes]", body[:maxLoggedBody], len(body))
			}
			attrs = append(attrs, slog.String("error_body", body))
		}
	}
	c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP response", attrs...)
}

func redact(h http.Header, sensitive string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		// Logged on its own as request_id.
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(requestIDHeader) {
			continue
		}
		key := strings.ToLower(k)
		if key == sensitive || strings.Contains(key, "token") || strings.Contains(key, "key") {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// peekBody reads the body and puts it back for the caller.
func peekBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return string(b), nil
}
