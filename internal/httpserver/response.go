package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/telemetry"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    any                  `json:"data,omitempty"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

type userSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsEmailConfirmed bool   `json:"isEmailConfirmed"`
}

func summary(u *models.User) userSummary {
	return userSummary{
		ID:               u.ID.String(),
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		IsEmailConfirmed: u.IsEmailConfirmed,
	}
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Response{Success: true, Message: message, Data: data})
}

// bind decodes and validates the body. Decode failures are validation errors.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &service.ValidationError{Fields: []service.FieldError{{Field: "body", Message: "Invalid request body"}}}
	}
	return c.Validate(req)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// mapError picks the status and envelope for err. internal reports an
// unexpected failure that must not leak to the client.
func mapError(err error) (int, Response, bool) {
	var (
		ve *service.ValidationError
		se *service.StockError
		ue *service.UnconfirmedError
		nf *service.NotFoundError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Response{Message: "Validation errors", Errors: ve.Fields}, false
	case errors.As(err, &se):
		return http.StatusBadRequest, Response{Message: se.Error()}, false
	case errors.As(err, &ue):
		return http.StatusForbidden, Response{
			Message: "Please confirm your email before logging in",
			Data:    map[string]any{"user": summary(ue.User), "requiresConfirmation": true},
		}, false
	case errors.As(err, &nf):
		return http.StatusNotFound, Response{Message: capitalize(nf.Msg)}, false
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, Response{Message: "Not found"}, false
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, Response{Message: "User with this email already exists"}, false
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest, Response{Message: "Invalid or expired token"}, false
	case errors.Is(err, service.ErrAlreadyConfirmed):
		return http.StatusBadRequest, Response{Message: "Email is already confirmed"}, false
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, Response{Message: "Invalid credentials"}, false
	case errors.Is(err, service.ErrInvalidAdminCredentials):
		return http.StatusUnauthorized, Response{Message: "Invalid admin credentials"}, false
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, Response{Message: "Not authorized"}, false
	case errors.Is(err, service.ErrEmailDelivery):
		return http.StatusInternalServerError, Response{Message: "Failed to send email. Please try again."}, false
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, Response{Message: msg}, he.Code >= http.StatusInternalServerError
	default:
		return http.StatusInternalServerError, Response{Message: "internal server error"}, true
	}
}

// ErrorHandler renders every failure into the response envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	ctx := c.Request().Context()

	code, resp, internal := mapError(err)
	if internal {
		logging.FromContext(ctx).Error("unhandled_error", "status", code, "error", err)
		telemetry.CaptureError(ctx, err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, resp)
	}
	if werr != nil {
		logging.FromContext(ctx).Error("write_error_response", "error", werr)
	}
}

// optionalBool reads "true"/"false" query values; anything else is unset.
func optionalBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
