package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

type CheckoutUsecase struct {
	tx  repo.TransactionManager
	log *slog.Logger
	now func() time.Time
}

func NewCheckoutUsecase(tx repo.TransactionManager, log *slog.Logger) *CheckoutUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutUsecase{tx: tx, log: log, now: time.Now}
}

// Checkout はactiveカートを注文に変える。
// 注文作成・在庫減算・カートのchecked_out化は1つのTxで行い、途中で失敗すれば何も残らない。
//
// ロック順: ユーザー行 => カート行 => 商品行（id昇順）。
func (u *CheckoutUsecase) Checkout(ctx context.Context, id model.Identity) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := activeCart(ctx, r, id.UserID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := r.Inventory().LockForUpdate(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		// ロック後の値で再検証（カートに入れた時点から在庫・価格が変わっている可能性がある）
		var total int64
		var currency string
		items := make([]model.OrderItem, 0, len(cart.Items))
		for _, ci := range cart.Items {
			p, ok := products[ci.ProductID]
			if !ok {
				return fmt.Errorf("%w: %d", ErrProductNotFound, ci.ProductID)
			}
			if p.Stock < ci.Quantity {
				return fmt.Errorf("%w: %s (requested %d, available %d)", ErrInsufficientStock, p.Name, ci.Quantity, p.Stock)
			}
			if currency == "" {
				currency = p.Currency
			} else if p.Currency != currency {
				return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, currency, p.Currency)
			}

			total += p.PriceCents * ci.Quantity
			items = append(items, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceCents:      p.PriceCents,
				Quantity:            ci.Quantity,
			})
		}

		order, err := r.Orders().Create(ctx, model.Order{
			UserID:     id.UserID,
			Status:     model.OrderStatusPaid,
			TotalCents: total,
			Currency:   currency,
			CreatedAt:  u.now(),
		}, items)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		ledger := newLedger(r)
		for _, it := range items {
			if err := ledger.decrement(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if err := r.Carts().MarkCheckedOut(ctx, cart.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("cart %d is no longer active: %w", cart.ID, ErrBusy)
			}
			return fmt.Errorf("mark cart checked out: %w", err)
		}

		out = toOrderOutput(order)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.log.InfoContext(ctx, "order placed",
		slog.Int64("order_id", out.ID),
		slog.Int64("user_id", id.UserID),
		slog.Int64("total_cents", out.TotalCents),
		slog.String("currency", out.Currency),
	)
	return out, nil
}
