package nominatim

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"geosearch/internal/domain"
)

const (
	// DefaultEndpoint is the public Nominatim search endpoint.
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"
	// ResultLimit is the number of results requested per search.
	ResultLimit = 10

	defaultLanguage  = "en"
	defaultUserAgent = "geosearch/1.0"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
	maxErrorBody     = 512
)

// Client queries a Nominatim search endpoint.
type Client struct {
	endpoint   string
	language   string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the search URL. Query parameters already present on the
// URL are kept.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = strings.TrimSpace(endpoint)
		}
	}
}

// WithLanguage sets the accept-language parameter.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if strings.TrimSpace(lang) != "" {
			c.language = strings.TrimSpace(lang)
		}
	}
}

// WithUserAgent sets the User-Agent header, which the Nominatim usage policy
// requires to identify the application.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the public endpoint unless overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		language:   defaultLanguage,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured search URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Params returns the query parameters sent for query.
func (c *Client) Params(query string) url.Values {
	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("accept-language", c.language)
	values.Set("limit", strconv.Itoa(ResultLimit))
	values.Set("addressdetails", "1")
	return values
}

// Search sends one GET request for query and decodes the result array.
// Entries are returned as received, without validation.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Location, error) {
	const op = "nominatim.Search"

	reqURL, err := c.requestURL(query)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Kind:   KindStatus,
			Op:     op,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	return decodeResults(op, body)
}

func (c *Client) requestURL(query string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	values := u.Query()
	for key, vals := range c.Params(query) {
		values[key] = vals
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func decodeResults(op string, body []byte) ([]domain.Location, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("null")) {
		return []domain.Location{}, nil
	}

	var results []domain.Location
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	if results == nil {
		results = []domain.Location{}
	}
	return results, nil
}
