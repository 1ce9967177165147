package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/storage"
)

// HTTPClient implements DataSource by calling the workouthub REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// conversions run on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, http.Header, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}

	return data, resp.Header, nil
}

func (c *HTTPClient) ListFormats(ctx context.Context) ([]ingest.FormatInfo, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/v1/formats", nil, nil)
	if err != nil {
		return nil, err
	}

	var formats []ingest.FormatInfo
	if err := json.Unmarshal(body, &formats); err != nil {
		return nil, fmt.Errorf("httpclient: decode formats: %w", err)
	}
	return formats, nil
}

func (c *HTTPClient) Convert(ctx context.Context, from, to ingest.Format, content []byte) (*Conversion, error) {
	params := url.Values{}
	params.Set("from", string(from))
	params.Set("to", string(to))

	body, header, err := c.do(ctx, http.MethodPost, "/api/v1/convert", params, content)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		ID:     header.Get("X-Conversion-Id"),
		From:   from,
		To:     to,
		Output: string(body),
	}, nil
}

func (c *HTTPClient) RoundTrip(ctx context.Context, format ingest.Format, content []byte) (*roundtrip.Report, error) {
	params := url.Values{}
	params.Set("format", string(format))

	body, _, err := c.do(ctx, http.MethodPost, "/api/v1/roundtrip", params, content)
	if err != nil {
		return nil, err
	}

	var report roundtrip.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("httpclient: decode report: %w", err)
	}
	return &report, nil
}

func (c *HTTPClient) RecentConversions(ctx context.Context, format string, limit int) ([]storage.ConversionLog, error) {
	params := url.Values{}
	if format != "" {
		params.Set("format", format)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, _, err := c.do(ctx, http.MethodGet, "/api/v1/conversions", params, nil)
	if err != nil {
		return nil, err
	}

	var logs []storage.ConversionLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode conversions: %w", err)
	}
	return logs, nil
}
