package handler

import (
	"net/http"
	"strconv"

	"techgear/internal/middleware"
	"techgear/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
	CategoryID  *int64 `json:"category_id"`
	BrandID     *int64 `json:"brand_id"`
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

type CatalogEntryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// /admin 配下（商品・在庫・カテゴリ・ブランド）
type AdminProductHandler struct {
	uc      *usecase.ProductUsecase
	catalog *usecase.CatalogUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, catalog *usecase.CatalogUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, catalog: catalog}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	admin := e.Group("/admin")

	admin.Use(authMW)
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PUT("/inventory/:product_id", h.updateInventory)
	admin.POST("/categories", h.createCategory)
	admin.POST("/brands", h.createBrand)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminCreateProduct(c.Request().Context(), id, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return unauthorized(c)
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminUpdateInventory(c.Request().Context(), id, productID, req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req CatalogEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.catalog.AdminCreateCategory(c.Request().Context(), id, usecase.CatalogEntryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) createBrand(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req CatalogEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.catalog.AdminCreateBrand(c.Request().Context(), id, usecase.CatalogEntryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
