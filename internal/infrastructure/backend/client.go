// Package backend is a client for the hosted backend-as-a-service REST API
// (PostgREST dialect) that fronts the same Postgres database as the ORM.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when no backend URL is set
var ErrNotConfigured = errors.New("backend url is not configured")

// ErrUnavailable wraps transport failures talking to the backend
var ErrUnavailable = errors.New("backend unavailable")

// APIError is the error body returned by the REST backend
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Options configures the client
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// Client talks to the /rest/v1 endpoints
type Client struct {
	http *resty.Client
}

// NewClient creates a backend client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/rest/v1").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if opts.APIKey != "" {
		httpClient.SetHeader("apikey", opts.APIKey).
			SetAuthToken(opts.APIKey)
	}

	return &Client{http: httpClient}, nil
}

// Query describes a select: column filters in PostgREST operator form
// ("eq.5", "in.(a,b)"), an order clause and an optional page. Select
// defaults to "*" and may embed related tables.
type Query struct {
	Select  string
	Filters map[string]string
	Order   string
	Limit   int
	Offset  int
	Count   bool
}

// Eq formats an equality filter
func Eq(v interface{}) string {
	return fmt.Sprintf("eq.%v", v)
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("select", q.Select)
	} else {
		v.Set("select", "*")
	}
	for col, filter := range q.Filters {
		v.Set(col, filter)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func filterValues(filters map[string]string) url.Values {
	v := url.Values{}
	for col, filter := range filters {
		v.Set(col, filter)
	}
	return v
}

// Select reads rows into out (a pointer to a slice). With q.Count set the
// exact total from the Content-Range header is returned, otherwise -1.
func (c *Client) Select(ctx context.Context, table string, q Query, out interface{}) (int64, error) {
	req := c.http.R().SetContext(ctx).SetQueryParamsFromValues(q.values())
	if q.Count {
		req.SetHeader("Prefer", "count=exact")
	}

	resp, err := req.Get("/" + table)
	if err := checkResponse(resp, err); err != nil {
		return 0, err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return 0, fmt.Errorf("decode %s rows: %w", table, err)
	}

	if !q.Count {
		return -1, nil
	}
	return parseContentRange(resp.Header().Get("Content-Range"))
}

// Insert creates one row and decodes the stored representation into out
func (c *Client) Insert(ctx context.Context, table string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		Post("/" + table)
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	return decodeOptional(resp.Body(), out)
}

// Update patches rows matching filters and decodes the updated rows into out
func (c *Client) Update(ctx context.Context, table string, filters map[string]string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParamsFromValues(filterValues(filters)).
		SetBody(body).
		Patch("/" + table)
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	return decodeOptional(resp.Body(), out)
}

// Delete removes rows matching filters and decodes the removed rows into out
func (c *Client) Delete(ctx context.Context, table string, filters map[string]string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParamsFromValues(filterValues(filters)).
		Delete("/" + table)
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	return decodeOptional(resp.Body(), out)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode()}
		_ = json.Unmarshal(resp.Body(), apiErr)
		return apiErr
	}
	return nil
}

func decodeOptional(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// parseContentRange reads the total from "0-9/42" or "*/0"
func parseContentRange(header string) (int64, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", header)
	}
	total := header[idx+1:]
	if total == "*" {
		return -1, nil
	}
	return strconv.ParseInt(total, 10, 64)
}
