package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	return page, limit
}

func (h *ProductHTTP) list(c echo.Context, category, text string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	page, limit := pageParams(c)
	active := true
	res, err := h.Svc.List(ctx, service.ListQuery{
		Page:     page,
		Limit:    limit,
		Category: category,
		Search:   text,
		Active:   &active,
	})
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	return h.list(c, c.QueryParam("category"), c.QueryParam("search"))
}

func (h *ProductHTTP) ByCategory(c echo.Context) error {
	return h.list(c, c.Param("category"), c.QueryParam("search"))
}

func (h *ProductHTTP) Search(c echo.Context) error {
	return h.list(c, c.QueryParam("category"), c.Param("query"))
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := h.Svc.Get(ctx, c.Param("id"), false)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"product": p})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	actor, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body")
		return err
	}

	p, err := h.Svc.Create(ctx, actor, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}

	l.Info("product_created", "product_id", p.ID)
	return respond(c, http.StatusCreated, "Product created successfully", echo.Map{"product": p})
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	actor, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.ProductUpdateRequest
	if err := bind(c, &req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body")
		return err
	}

	p, err := h.Svc.Update(ctx, actor, c.Param("id"), service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product updated successfully", echo.Map{"product": p})
}

func (h *ProductHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.QuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.Svc.UpdateQuantity(ctx, actor, c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product quantity updated successfully", echo.Map{"product": p})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := GetID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product deleted successfully", nil)
}
