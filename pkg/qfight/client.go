// Package qfight is a thin client for the qfight account and player HTTP API.
package qfight

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/code-100-precent/LingQfight/pkg/utils/xhttp"
)

// Response is the raw outcome of one call; every status code is returned without error
type Response = xhttp.Response

// RequestIDHeader matches the header the server's RequestID middleware echoes
const RequestIDHeader = "X-Request-ID"

type Client struct {
	baseURL string
	headers []*xhttp.HeaderOption
}

// NewClient expects the API root, e.g. http://127.0.0.1:8009/api
func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithRequestID returns a copy of c that tags every request with id, so server logs can be joined to a run
func (c *Client) WithRequestID(id string) *Client {
	return c.WithHeader(RequestIDHeader, id)
}

// WithHeader returns a copy of c that sends key: value on every request
func (c *Client) WithHeader(key, value string) *Client {
	headers := make([]*xhttp.HeaderOption, 0, len(c.headers)+1)
	for _, h := range c.headers {
		if h.Key != key {
			headers = append(headers, h)
		}
	}
	headers = append(headers, &xhttp.HeaderOption{Key: key, Value: value})
	return &Client{baseURL: c.baseURL, headers: headers}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]interface{}, body interface{}) (*Response, error) {
	return xhttp.Do(ctx, method, c.url(path), query, body, c.headers...)
}

// Login POST /auth/login
func (c *Client) Login(ctx context.Context, username, password string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/login", nil, LoginRequest{Username: username, Password: password})
}

// Register POST /auth/register, performed by the admin named in caller
func (c *Client) Register(ctx context.Context, caller string, req RegisterRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, RegisterPayload{Username: caller, Req: req})
}

// GetPlayerData GET /player/data?account_id=
func (c *Client) GetPlayerData(ctx context.Context, accountID int64) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/player/data", map[string]interface{}{"account_id": accountID}, nil)
}

// UpdatePlayer PUT /player/update
func (c *Client) UpdatePlayer(ctx context.Context, caller string, req UpdateRequest) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/player/update", nil, UpdatePayload{Username: caller, Req: req})
}

// ResetPlayer POST /player/reset?account_id=; the body is the caller's username as a bare JSON string
func (c *Client) ResetPlayer(ctx context.Context, caller string, accountID int64) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/player/reset", map[string]interface{}{"account_id": accountID}, caller)
}

// Decode parses a response body into the shared envelope
func Decode[T any](resp *Response) (*Envelope[T], error) {
	var env Envelope[T]
	if err := resp.JSON(&env); err != nil {
		return nil, fmt.Errorf("decode %d response: %w", resp.StatusCode, err)
	}
	return &env, nil
}
