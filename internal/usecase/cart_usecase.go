package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemOutput struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type CartOutput struct {
	ID           int64            `json:"id"`
	Status       model.CartStatus `json:"status"`
	Items        []CartItemOutput `json:"items"`
	TotalCents   int64            `json:"total_cents"`
	Currency     string           `json:"currency"`
	TotalDisplay string           `json:"total_display"`
}

type AddToCartInput struct {
	ProductID int64
	Quantity  int64
}

// 自分のactiveカートを返す（無ければ作る）
func (u *CartUsecase) GetCart(ctx context.Context, id model.Identity) (CartOutput, error) {
	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := activeCart(ctx, r, id.UserID)
		if err != nil {
			return err
		}
		out, err = buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 商品をカートに追加する。同じ商品があれば数量を足す。
// 合計数量が在庫を超える場合は何も変えずにエラー。
func (u *CartUsecase) AddToCart(ctx context.Context, id model.Identity, in AddToCartInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, fmt.Errorf("%w: %d", ErrProductNotFound, in.ProductID)
	}
	if in.Quantity <= 0 {
		return CartOutput{}, ErrInvalidQuantity
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := activeCart(ctx, r, id.UserID)
		if err != nil {
			return err
		}

		qty := in.Quantity
		if existing, ok := cart.Item(in.ProductID); ok {
			// 合計がint64に収まらない数量は在庫を必ず超える
			if in.Quantity > math.MaxInt64-existing.Quantity {
				return fmt.Errorf("%w: product %d (requested %d more than %d in cart)", ErrInsufficientStock, in.ProductID, in.Quantity, existing.Quantity)
			}
			qty += existing.Quantity
		}

		p, err := newLedger(r).reserve(ctx, in.ProductID, qty)
		if err != nil {
			return err
		}
		if err := checkCurrency(ctx, r, cart, p); err != nil {
			return err
		}

		if err := r.Carts().SaveItem(ctx, cart.ID, in.ProductID, qty); err != nil {
			return fmt.Errorf("save cart item: %w", err)
		}
		if cart.Items, err = r.Carts().ListItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		out, err = buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細の数量を上書きする。0以下なら明細を削除。
// カートに無い商品はItemNotFound（新規追加はAddToCartで行う）。未知の商品はProductNotFound。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, id model.Identity, productID int64, quantity int64) (CartOutput, error) {
	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := activeCart(ctx, r, id.UserID)
		if err != nil {
			return err
		}
		if _, ok := cart.Item(productID); !ok {
			// 存在しない商品はItemNotFoundより先にProductNotFoundを返す
			if quantity > 0 {
				_, err := r.Products().FindByID(ctx, productID)
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
				}
				if err != nil {
					return fmt.Errorf("find product: %w", err)
				}
			}
			return fmt.Errorf("%w: product %d", ErrItemNotFound, productID)
		}

		if quantity <= 0 {
			if err := deleteItem(ctx, r, cart.ID, productID); err != nil {
				return err
			}
		} else {
			if _, err := newLedger(r).reserve(ctx, productID, quantity); err != nil {
				return err
			}
			if err := r.Carts().SaveItem(ctx, cart.ID, productID, quantity); err != nil {
				return fmt.Errorf("save cart item: %w", err)
			}
		}

		if cart.Items, err = r.Carts().ListItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		out, err = buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細を削除する
func (u *CartUsecase) DeleteCartItem(ctx context.Context, id model.Identity, productID int64) (CartOutput, error) {
	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := activeCart(ctx, r, id.UserID)
		if err != nil {
			return err
		}
		if err := deleteItem(ctx, r, cart.ID, productID); err != nil {
			return err
		}
		if cart.Items, err = r.Carts().ListItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		out, err = buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// activeCart はユーザー行をロックしてからactiveカートを取得する（無ければ作る）。
// 同じユーザーの操作はここで直列になるので、activeカートが2つできることはない。
func activeCart(ctx context.Context, r repo.TxRepos, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, ErrUnauthenticated
	}
	if _, err := r.Users().LockByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Cart{}, ErrUnauthenticated
		}
		return model.Cart{}, fmt.Errorf("lock user: %w", err)
	}

	cart, err := r.Carts().FindActiveByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, fmt.Errorf("find active cart: %w", err)
	}

	cart, err = r.Carts().CreateActive(ctx, userID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func deleteItem(ctx context.Context, r repo.TxRepos, cartID int64, productID int64) error {
	err := r.Carts().DeleteItem(ctx, cartID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: product %d", ErrItemNotFound, productID)
	}
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// カート内の他の商品と通貨がそろっているか
func checkCurrency(ctx context.Context, r repo.TxRepos, cart model.Cart, p model.Product) error {
	ids := make([]int64, 0, len(cart.Items))
	for _, it := range cart.Items {
		if it.ProductID != p.ID {
			ids = append(ids, it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	others, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load cart products: %w", err)
	}
	for _, o := range others {
		if o.Currency != p.Currency {
			return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, o.Currency, p.Currency)
		}
	}
	return nil
}

// 現在の商品価格でカートの表示を組み立てる
func buildCartOutput(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartOutput, error) {
	out := CartOutput{
		ID:       cart.ID,
		Status:   cart.Status,
		Items:    make([]CartItemOutput, 0, len(cart.Items)),
		Currency: model.DefaultCurrency,
	}

	ids := make([]int64, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, fmt.Errorf("load cart products: %w", err)
	}

	for i, it := range cart.Items {
		p := products[it.ProductID]
		if i == 0 && p.Currency != "" {
			out.Currency = p.Currency
		}
		line := p.PriceCents * it.Quantity
		out.Items = append(out.Items, CartItemOutput{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
			LineTotalCents: line,
		})
		out.TotalCents += line
	}
	out.TotalDisplay = model.FormatMinor(out.TotalCents, out.Currency)
	return out, nil
}
