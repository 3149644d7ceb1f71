package shopclient

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

type Client struct {
	baseURL    string
	httpClient *http.Client
	Session    *Session
}

// NewClient targets baseURL (for example http://localhost:5000/api).
// A nil session gets an in-memory one.
func NewClient(baseURL string, session *Session) *Client {
	if session == nil {
		session = NewSession(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Session: session,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
			return &APIError{Status: resp.StatusCode, Message: "invalid response body"}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || (resp.StatusCode != http.StatusNoContent && !env.Success) {
		if resp.StatusCode == http.StatusUnauthorized && req.Header.Get("Authorization") != "" {
			_ = c.Session.Clear()
		}
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Errors: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type userData struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, credentials{Name: name, Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) login(ctx context.Context, path, email, password string) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodPost, path, nil, credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if err := c.Session.Set(SessionState{Token: out.Token, User: out.User, ExpiresAt: out.ExpiresAt}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.login(ctx, "/auth/login", email, password)
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) (*User, error) {
	return c.login(ctx, "/auth/admin/login", email, password)
}

// Logout forgets the token locally; tokens are stateless on the server.
func (c *Client) Logout() error {
	return c.Session.Clear()
}

func (c *Client) ConfirmEmail(ctx context.Context, token string) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodGet, "/auth/confirm-email/"+url.PathEscape(token), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/resend-confirmation", nil, credentials{Email: email}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, credentials{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/"+url.PathEscape(token), nil, credentials{Password: password}, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) ListProducts(ctx context.Context, pq ProductQuery) (*ProductPage, error) {
	q := pageQuery(pq.Page, pq.Limit)
	if pq.Category != "" {
		q.Set("category", pq.Category)
	}
	if pq.Search != "" {
		q.Set("search", pq.Search)
	}
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out struct {
		Product *Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string, page, limit int) (*ProductPage, error) {
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/category/"+url.PathEscape(category), pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchProducts(ctx context.Context, text string, page, limit int) (*ProductPage, error) {
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/search/"+url.PathEscape(text), pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type cartData struct {
	Cart *Cart `json:"cart"`
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*Cart, error) {
	var out cartData
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/add", map[string]any{"productId": productID, "quantity": quantity})
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/update/"+url.PathEscape(productID), map[string]any{"quantity": quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) (*Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/clear", nil)
}

func (c *Client) CartTotal(ctx context.Context) (float64, int, error) {
	var out struct {
		Total     float64 `json:"total"`
		ItemCount int     `json:"itemCount"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart/total", nil, nil, &out); err != nil {
		return 0, 0, err
	}
	return out.Total, out.ItemCount, nil
}
