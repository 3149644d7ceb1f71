package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func productParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Fields: []service.FieldError{{Field: "productId", Message: "Invalid product ID"}}}
	}
	return id, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetOrCreate(ctx, userID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"cart": cart})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart")

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body")
		return err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return &service.ValidationError{Fields: []service.FieldError{{Field: "productId", Message: "Invalid product ID"}}}
	}

	cart, err := h.Svc.Add(ctx, userID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Item added to cart successfully", echo.Map{"cart": cart})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	productID, err := productParam(c)
	if err != nil {
		return err
	}

	var req transport.UpdateCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cart, err := h.Svc.Update(ctx, userID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart item updated successfully", echo.Map{"cart": cart})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	productID, err := productParam(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Remove(ctx, userID, productID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Item removed from cart successfully", echo.Map{"cart": cart})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart cleared successfully", echo.Map{"cart": cart})
}

func (h *CartHTTP) Total(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	total, count, err := h.Svc.Total(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"total": total, "itemCount": count})
}
