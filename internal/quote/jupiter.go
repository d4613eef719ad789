package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solana-pool-sniper/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://price.jup.ag/v4"
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 1 << 20
)

// JupiterClient implements Source using the Jupiter price API.
// It makes exactly one request per call; there are no retries.
type JupiterClient struct {
	baseURL string
	vsToken string
	client  *http.Client
}

// ClientOption configures JupiterClient.
type ClientOption func(*JupiterClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *JupiterClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *JupiterClient) {
		c.client = client
	}
}

// NewJupiterClient creates a price client. vsToken is the mint prices are
// quoted against, normally the native mint.
func NewJupiterClient(baseURL, vsToken string, opts ...ClientOption) *JupiterClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &JupiterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		vsToken: vsToken,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// priceResponse is the /price response body.
type priceResponse struct {
	Data map[string]*priceData `json:"data"`
}

// priceData is one entry of the data map.
type priceData struct {
	ID      string     `json:"id"`
	VsToken string     `json:"vsToken,omitempty"`
	Price   priceValue `json:"price"`
}

// priceValue accepts both numeric and string encoded prices.
type priceValue float64

func (p *priceValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", s, err)
	}
	*p = priceValue(v)
	return nil
}

// Price fetches the current price for mint.
func (c *JupiterClient) Price(ctx context.Context, mint string) (float64, bool, error) {
	start := time.Now()
	price, ok, err := c.fetch(ctx, mint)
	observability.RecordQuoteFetch(time.Since(start).Seconds(), err)
	return price, ok, err
}

func (c *JupiterClient) fetch(ctx context.Context, mint string) (float64, bool, error) {
	q := url.Values{}
	q.Set("ids", mint)
	if c.vsToken != "" {
		q.Set("vsToken", c.vsToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/price?"+q.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var pr priceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, false, fmt.Errorf("unmarshal response: %w", err)
	}

	entry := pr.Data[mint]
	if entry == nil || entry.Price <= 0 {
		return 0, false, nil
	}
	return float64(entry.Price), true, nil
}

var _ Source = (*JupiterClient)(nil)
