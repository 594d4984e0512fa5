package repository

import (
	"context"

	"techgear/internal/domain/model"
)

// 在庫（products.stock）の読み書き。トランザクション内で使う。
type InventoryRepository interface {
	// 共有ロック付きで読む（カート操作の事前チェック用）
	FindForShare(ctx context.Context, productID int64) (model.Product, error)

	// id昇順に行ロックを取る。見つからないIDはmapに入らない
	LockForUpdate(ctx context.Context, productIDs []int64) (map[int64]model.Product, error)

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
