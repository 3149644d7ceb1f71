package shopclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	const token = "tok-123"
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token":     token,
				"expiresAt": time.Now().Add(time.Hour),
				"user":      map[string]any{"id": "u1", "email": body["email"], "role": "user", "isEmailConfirmed": true},
			},
		})
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Validation errors",
			"errors":  []map[string]string{{"field": "email", "message": "Please provide a valid email"}},
		})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authorized, token failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"user": map[string]any{"id": "u1"}}})
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"products":   []map[string]any{{"id": "p1", "name": q.Get("search"), "category": q.Get("category")}},
				"pagination": map[string]any{"page": 2, "limit": 5, "total": 6, "pages": 2},
			},
		})
	})
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Quantity > 5 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Only 5 items available in stock"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"cart": map[string]any{
			"total": 10.5,
			"items": []map[string]any{{"productId": body.ProductID, "quantity": body.Quantity, "price": 10.5, "product": nil}},
		}}})
	})
	mux.HandleFunc("GET /api/cart/total", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"total": 21, "itemCount": 2}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginStoresSessionAndSendsBearer(t *testing.T) {
	t.Parallel()

	srv := newAPI(t)
	store := FileStore{Path: filepath.Join(t.TempDir(), "session.json")}
	c := NewClient(srv.URL+"/api/", NewSession(store))
	ctx := context.Background()

	assert.False(t, c.Session.IsAuthenticated())
	_, err := c.Me(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	u, err := c.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.True(t, c.Session.IsAuthenticated())
	assert.False(t, c.Session.IsAdmin())
	assert.Equal(t, "tok-123", c.Session.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)

	restored := NewSession(store)
	require.NoError(t, restored.Load())
	assert.Equal(t, "tok-123", restored.Token())
	assert.Equal(t, "ann@example.com", restored.Current().Email)

	require.NoError(t, c.Logout())
	assert.False(t, c.Session.IsAuthenticated())
	assert.Nil(t, c.Session.Current())

	again := NewSession(store)
	require.NoError(t, again.Load())
	assert.False(t, again.IsAuthenticated())
}

func TestClient_APIErrors(t *testing.T) {
	t.Parallel()

	srv := newAPI(t)
	c := NewClient(srv.URL+"/api", nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "ann@example.com", "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, c.Session.IsAuthenticated())

	_, err = c.Signup(ctx, "Ann", "bad", "secret1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, []FieldError{{Field: "email", Message: "Please provide a valid email"}}, apiErr.Errors)
	assert.Contains(t, apiErr.Error(), "email: Please provide a valid email")
}

func TestClient_CatalogAndCart(t *testing.T) {
	t.Parallel()

	srv := newAPI(t)
	c := NewClient(srv.URL+"/api", nil)
	ctx := context.Background()

	page, err := c.ListProducts(ctx, ProductQuery{Page: 2, Limit: 5, Category: "Books", Search: "go"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "go", page.Products[0].Name)
	assert.Equal(t, "Books", page.Products[0].Category)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 6, Pages: 2}, page.Pagination)

	cart, err := c.AddToCart(ctx, "p1", 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Nil(t, cart.Items[0].Product)
	assert.Equal(t, 10.5, cart.Total)

	_, err = c.AddToCart(ctx, "p1", 6)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Only 5 items available in stock", apiErr.Message)

	total, count, err := c.CartTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21.0, total)
	assert.Equal(t, 2, count)
}

func TestSession_ExpiryAndConcurrency(t *testing.T) {
	t.Parallel()

	store := &MemoryStore{}
	s := NewSession(store)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(SessionState{Token: "t", User: &User{Role: "admin"}, ExpiresAt: now.Add(time.Minute)}))
	assert.True(t, s.IsAdmin())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IsAuthenticated()
			_ = s.Current()
		}()
	}
	wg.Wait()

	now = now.Add(2 * time.Minute)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Current())

	reloaded := NewSession(store)
	reloaded.now = func() time.Time { return now }
	require.NoError(t, reloaded.Load())
	assert.False(t, reloaded.IsAuthenticated())
	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}
