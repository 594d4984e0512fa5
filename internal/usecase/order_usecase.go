package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

type OrderItemOutput struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderOutput struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	Status       model.OrderStatus `json:"status"`
	TotalCents   int64             `json:"total_cents"`
	Currency     string            `json:"currency"`
	TotalDisplay string            `json:"total_display"`
	CreatedAt    time.Time         `json:"created_at"`
	Items        []OrderItemOutput `json:"items"`
}

func toOrderOutput(o model.Order) OrderOutput {
	out := OrderOutput{
		ID:           o.ID,
		UserID:       o.UserID,
		Status:       o.Status,
		TotalCents:   o.TotalCents,
		Currency:     o.Currency,
		TotalDisplay: model.FormatMinor(o.TotalCents, o.Currency),
		CreatedAt:    o.CreatedAt,
		Items:        make([]OrderItemOutput, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemOutput{
			ProductID:      it.ProductID,
			Name:           it.ProductNameSnapshot,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
			LineTotalCents: it.LineTotal(),
		})
	}
	return out
}

// 注文の参照（本人の注文のみ）。
// 読み取りもTxManager経由にして、タイムアウトとロック待ちの上限を効かせる。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, id model.Identity) ([]OrderOutput, error) {
	if id.UserID <= 0 {
		return nil, ErrUnauthenticated
	}

	var orders []model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, err = r.Orders().ListByUserID(ctx, id.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o))
	}
	return out, nil
}

// 他人の注文は存在しないものとして扱う
func (u *OrderUsecase) GetMyOrder(ctx context.Context, id model.Identity, orderID int64) (OrderOutput, error) {
	if id.UserID <= 0 {
		return OrderOutput{}, ErrUnauthenticated
	}
	if orderID <= 0 {
		return OrderOutput{}, ErrOrderNotFound
	}

	var o model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		o, err = r.Orders().FindByID(ctx, orderID)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderOutput{}, fmt.Errorf("find order: %w", err)
	}
	if o.UserID != id.UserID {
		return OrderOutput{}, ErrOrderNotFound
	}
	return toOrderOutput(o), nil
}
