// Package backend is the HTTP client for the restaurant order backend.
// Every endpoint answers with the {success, data, message} envelope.
package backend

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
)

var ErrNotFound = errors.New("resource not found")

// APIError is returned when the backend answers success:false or a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) ListTables(ctx context.Context, q TableQuery) ([]Table, error) {
	v := url.Values{}
	setIf(v, "restaurant", q.Restaurant)
	setIf(v, "status", string(q.Status))
	setIf(v, "search", q.Search)

	var out []Table
	if err := c.do(ctx, http.MethodGet, "/tables", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMenuItems(ctx context.Context, q MenuQuery) ([]MenuItem, error) {
	v := url.Values{}
	setIf(v, "restaurant", q.Restaurant)
	if q.Active != nil {
		v.Set("isActive", strconv.FormatBool(*q.Active))
	}
	setIf(v, "category", q.Category)
	setIf(v, "search", q.Search)

	var out []MenuItem
	if err := c.do(ctx, http.MethodGet, "/menuItems", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	v := url.Values{}
	setIf(v, "restaurant", q.Restaurant)
	setIf(v, "status", q.Status)

	var out []Order
	if err := c.do(ctx, http.MethodGet, "/orders", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder posts the order and returns the id assigned by the backend.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var out struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "order id missing in response"}
	}
	return out.ID, nil
}

func (c *Client) UpdateTableStatus(ctx context.Context, tableID string, status TableStatus) error {
	body := map[string]TableStatus{"status": status}
	return c.do(ctx, http.MethodPatch, "/tables/"+url.PathEscape(tableID), nil, body, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/status", nil, body, nil)
}

func (c *Client) SubmitPayment(ctx context.Context, orderID string, req PaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/payment", nil, req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if res.StatusCode >= 300 {
			return &APIError{StatusCode: res.StatusCode, Message: res.Status}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: res.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}
