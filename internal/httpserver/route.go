package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/db"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	DB      *gorm.DB
	AuthMW  *middleware.AuthMiddleware
	Metrics http.Handler

	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	CartHandler    *CartHTTP
	AdminHandler   *AdminHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, Response{Message: "database unavailable"})
		}
		return c.JSON(http.StatusOK, Response{Success: true, Message: "ready"})
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/admin/login", d.AuthHandler.AdminLogin)
	auth.GET("/confirm-email/:token", d.AuthHandler.ConfirmEmail)
	auth.POST("/resend-confirmation", d.AuthHandler.ResendConfirmation)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.POST("/reset-password/:token", d.AuthHandler.ResetPassword)
	auth.GET("/me", d.AuthHandler.Me, d.AuthMW.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/category/:category", d.ProductHandler.ByCategory)
	products.GET("/search/:query", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.AuthMW.RequireAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.AuthMW.RequireAdmin)
	products.PATCH("/:id/quantity", d.ProductHandler.UpdateQuantity, d.AuthMW.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.AuthMW.RequireAdmin)

	cart := api.Group("/cart")
	cart.Use(d.AuthMW.RequireConfirmed)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.PUT("/update/:productId", d.CartHandler.UpdateItem)
	cart.DELETE("/remove/:productId", d.CartHandler.RemoveItem)
	cart.DELETE("/clear", d.CartHandler.ClearCart)
	cart.GET("/total", d.CartHandler.Total)

	admin := api.Group("/admin")
	admin.Use(d.AuthMW.RequireAdmin)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
	admin.GET("/users", d.AdminHandler.Users)
	admin.GET("/products", d.AdminHandler.Products)
	admin.GET("/carts", d.AdminHandler.Carts)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.POST("/create-admin", d.AdminHandler.CreateAdmin)
	admin.POST("/bulk-delete-products", d.AdminHandler.BulkDeleteProducts)
}
