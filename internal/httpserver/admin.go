package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	d, err := h.Svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", d)
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", st)
}

func (h *AdminHTTP) Users(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Svc.Users(c.Request().Context(), service.UserQuery{
		Page:   page,
		Limit:  limit,
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *AdminHTTP) Products(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Svc.Products(c.Request().Context(), service.ListQuery{
		Page:     page,
		Limit:    limit,
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Active:   optionalBool(c.QueryParam("isActive")),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *AdminHTTP) Carts(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Svc.Carts(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *AdminHTTP) CreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_admin")

	actor, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.CreateAdminRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_admin_error", "status", 400, "reason", "invalid body")
		return err
	}

	user, err := h.Svc.CreateAdmin(ctx, actor, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Admin user created successfully", echo.Map{"user": summary(user)})
}

func (h *AdminHTTP) BulkDeleteProducts(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.BulkDeleteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	n, err := h.Svc.BulkDeleteProducts(ctx, actor, req.ProductIDs)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fmt.Sprintf("%d products deleted successfully", n), echo.Map{"deletedCount": n})
}
