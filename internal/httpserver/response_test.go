package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		code     int
		msg      string
		internal bool
	}{
		{name: "stock", err: &service.StockError{Available: 2}, code: http.StatusBadRequest, msg: "Only 2 items available in stock"},
		{name: "wrapped not found", err: fmt.Errorf("cart: %w", &service.NotFoundError{Msg: "cart not found"}), code: http.StatusNotFound, msg: "Cart not found"},
		{name: "conflict", err: fmt.Errorf("email already registered: %w", service.ErrConflict), code: http.StatusBadRequest, msg: "User with this email already exists"},
		{name: "credentials", err: service.ErrInvalidCredentials, code: http.StatusUnauthorized, msg: "Invalid credentials"},
		{name: "unconfirmed", err: &service.UnconfirmedError{User: &models.User{Email: "a@b.c"}}, code: http.StatusForbidden, msg: "Please confirm your email before logging in"},
		{name: "already confirmed", err: service.ErrAlreadyConfirmed, code: http.StatusBadRequest, msg: "Email is already confirmed"},
		{name: "email delivery", err: fmt.Errorf("%w: smtp down", service.ErrEmailDelivery), code: http.StatusInternalServerError, msg: "Failed to send email. Please try again."},
		{name: "echo http error", err: echo.NewHTTPError(http.StatusForbidden, "Access denied. Admin only."), code: http.StatusForbidden, msg: "Access denied. Admin only."},
		{name: "route not found", err: echo.ErrNotFound, code: http.StatusNotFound, msg: "Not Found"},
		{name: "unknown", err: errors.New("pq: connection refused"), code: http.StatusInternalServerError, msg: "internal server error", internal: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			code, resp, internal := mapError(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, resp.Message)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.internal, internal)
		})
	}
}

func TestValidator_UsesJSONNamesAndMessages(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	neg := -1
	err := v.Validate(&transport.QuantityRequest{Quantity: &neg})
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []service.FieldError{{Field: "quantity", Message: "Quantity must be a non-negative integer"}}, ve.Fields)

	zero := 0
	assert.NoError(t, v.Validate(&transport.QuantityRequest{Quantity: &zero}))

	err = v.Validate(&transport.BulkDeleteRequest{})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "productIds", ve.Fields[0].Field)
	assert.NoError(t, v.Validate(&transport.BulkDeleteRequest{ProductIDs: []string{}}))

	bad := "Toys"
	err = v.Validate(&transport.ProductUpdateRequest{Category: &bad})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Invalid category", ve.Fields[0].Message)
	assert.NoError(t, v.Validate(&transport.ProductUpdateRequest{}))
}

func TestValidator_PasswordLength(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{name: "too short", password: "12345", want: "Password must be at least 6 characters long"},
		{name: "over bcrypt limit", password: strings.Repeat("a", 73), want: "Password must be at most 72 bytes long"},
		{name: "at limit", password: strings.Repeat("a", 72)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&transport.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: tt.password})
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var ve *service.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, []service.FieldError{{Field: "password", Message: tt.want}}, ve.Fields)
		})
	}
}

func TestOptionalBool(t *testing.T) {
	t.Parallel()

	assert.Nil(t, optionalBool(""))
	assert.Nil(t, optionalBool("maybe"))
	require.NotNil(t, optionalBool("TRUE"))
	assert.True(t, *optionalBool("TRUE"))
	assert.False(t, *optionalBool("false"))
}
