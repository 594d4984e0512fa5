package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
	}
}

// 一覧・詳細で返す形（表示用の価格つき）
type ProductOutput struct {
	model.Product
	PriceDisplay string `json:"price_display"`
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		Product:      p,
		PriceDisplay: model.FormatMinor(p.PriceCents, p.Currency),
	}
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]ProductOutput, error) {
	products, err := u.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		out = append(out, toProductOutput(p))
	}
	return out, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return ProductOutput{}, fmt.Errorf("find product: %w", err)
	}
	return toProductOutput(p), nil
}

type CreateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int64
	ImageURL    string
	CategoryID  *int64
	BrandID     *int64
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actor model.Identity, in CreateProductInput) (ProductOutput, error) {
	if actor.UserID <= 0 {
		return ProductOutput{}, ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return ProductOutput{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.PriceCents < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	currency := model.NormalizeCurrency(in.Currency)
	if len(currency) != 3 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "currency must be a 3-letter code")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    currency,
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CategoryID:  in.CategoryID,
		BrandID:     in.BrandID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, repo.ErrReference) {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "unknown category_id or brand_id")
	}
	if err != nil {
		return ProductOutput{}, fmt.Errorf("create product: %w", err)
	}
	return toProductOutput(p), nil
}

// 在庫の現在値を設定し、差分を履歴に残す。
// 商品行をロックするので、同時に走っている確定とは直列になる。
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, actor model.Identity, productID int64, newStock int64, reason string) (ProductOutput, error) {
	if actor.UserID <= 0 {
		return ProductOutput{}, ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return ProductOutput{}, ErrForbidden
	}
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		locked, err := r.Inventory().LockForUpdate(ctx, []int64{productID})
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}
		p, ok := locked[productID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}

		//在庫の現在値を更新
		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
			}
			return fmt.Errorf("set stock: %w", err)
		}

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: actor.UserID,
			Delta:       newStock - p.Stock,
			Reason:      strings.TrimSpace(reason),
			CreatedAt:   time.Now(),
		}); err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}

		p.Stock = newStock
		out = toProductOutput(p)
		return nil
	})
	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}
