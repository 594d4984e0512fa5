package server

import (
	"techgear/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler

	// JWT検証（保護されたルートだけに付ける）
	AuthMW echo.MiddlewareFunc
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/", handler.Health)

	h.Auth.RegisterRoutes(e, h.AuthMW)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, h.AuthMW)
	h.Cart.RegisterRoutes(e, h.AuthMW)
	h.Order.RegisterRoutes(e, h.AuthMW)
}
