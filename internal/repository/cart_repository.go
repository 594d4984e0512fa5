package repository

import (
	"context"

	"techgear/internal/domain/model"
)

type CartRepository interface {
	// activeカートをFOR UPDATEで取得し、明細も詰めて返す。無ければErrNotFound
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	CreateActive(ctx context.Context, userID int64) (model.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 数量を上書きで保存（無ければ作成）
	SaveItem(ctx context.Context, cartID int64, productID int64, qty int64) error
	DeleteItem(ctx context.Context, cartID int64, productID int64) error
	// active => checked_out。activeでなければErrNotFound
	MarkCheckedOut(ctx context.Context, cartID int64) error
}
