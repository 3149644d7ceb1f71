package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := bind(c, &req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body")
		return err
	}

	user, err := h.Svc.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated,
		"User created successfully. Please check your email for confirmation link.",
		echo.Map{"user": summary(user)})
}

func (h *AuthHTTP) login(c echo.Context, admin bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login", "admin", admin)

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body")
		return err
	}

	var (
		res *service.AuthResult
		err error
		msg = "Login successful"
	)
	if admin {
		res, err = h.Svc.AdminLogin(ctx, req.Email, req.Password)
		msg = "Admin login successful"
	} else {
		res, err = h.Svc.Login(ctx, req.Email, req.Password)
	}
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, msg, echo.Map{
		"user":      summary(res.User),
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error { return h.login(c, false) }

func (h *AuthHTTP) AdminLogin(c echo.Context) error { return h.login(c, true) }

func (h *AuthHTTP) ConfirmEmail(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Svc.ConfirmEmail(ctx, c.Param("token"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Email confirmed successfully", echo.Map{"user": summary(user)})
}

func (h *AuthHTTP) ResendConfirmation(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ResendConfirmation(ctx, req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Confirmation email sent successfully", nil)
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ForgotPassword(ctx, req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "If that email is registered, a password reset link has been sent", nil)
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ResetPassword(ctx, c.Param("token"), req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password reset successfully", nil)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := GetID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"user": user})
}
