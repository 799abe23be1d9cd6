// Package convex talks to a deployment's HTTP function API with an admin key.
package convex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/log"
)

// Options configure a Client.
type Options struct {
	DeploymentURL string
	AdminKey      string
	HTTPClient    Doer
	Logger        *slog.Logger
}

// Client implements admin.Client over HTTP.
type Client struct {
	baseURL  string
	adminKey string
	http     *LoggingHTTPClient
}

var _ admin.Client = (*Client)(nil)

type functionResponse struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorData    any             `json:"errorData"`
}

// New validates the deployment URL and builds a client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.DeploymentURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &panelerr.ValidationError{Field: "deployment-url", Reason: fmt.Sprintf("invalid deployment URL %q", opts.DeploymentURL)}
	}
	if strings.TrimSpace(opts.AdminKey) == "" {
		return nil, &panelerr.ValidationError{Field: "admin-key", Reason: "an admin key is required"}
	}
	return &Client{
		baseURL:  base,
		adminKey: strings.TrimSpace(opts.AdminKey),
		http:     NewLoggingHTTPClient(opts.HTTPClient, opts.Logger),
	}, nil
}

// DeploymentURL is the base URL requests go to.
func (c *Client) DeploymentURL() string { return c.baseURL }

func (c *Client) Query(ctx context.Context, name string, args map[string]any) (any, error) {
	return c.call(ctx, "/api/query", map[string]any{"path": name, "args": nonNil(args), "format": "json"})
}

func (c *Client) Mutation(ctx context.Context, name string, args map[string]any) (any, error) {
	return c.call(ctx, "/api/mutation", map[string]any{"path": name, "args": nonNil(args), "format": "json"})
}

// RawMutation runs a function through the run endpoint, addressed by path.
// It serves as the fallback mutation path.
func (c *Client) RawMutation(ctx context.Context, name string, args map[string]any) (any, error) {
	return c.call(ctx, "/api/run/"+strings.TrimLeft(name, "/"), map[string]any{"args": nonNil(args), "format": "json"})
}

func (c *Client) call(ctx context.Context, path string, body map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn, ok := body["path"].(string); ok {
		ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{Function: fn})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Convex "+c.adminKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var decoded functionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Status == "" {
		if resp.StatusCode >= 400 {
			return nil, &panelerr.DataError{Msg: httpErrorMessage(resp.StatusCode, raw)}
		}
		return nil, fmt.Errorf("unexpected response: %s", truncate(string(raw)))
	}
	if decoded.Status != "success" {
		msg := decoded.ErrorMessage
		if msg == "" {
			msg = httpErrorMessage(resp.StatusCode, raw)
		}
		return nil, &panelerr.DataError{Msg: msg, Data: decoded.ErrorData}
	}
	if len(decoded.Value) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(decoded.Value, &value); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return value, nil
}

func nonNil(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

func httpErrorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return fmt.Sprintf("%d %s: %s", status, http.StatusText(status), truncate(text))
}

func truncate(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
