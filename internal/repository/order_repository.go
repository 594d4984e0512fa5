package repository

import (
	"context"

	"techgear/internal/domain/model"
)

// 注文は作成と参照のみ。
type OrderRepository interface {
	Create(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error)
	// 新しい順。明細も詰める
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
}
