package usecase

import (
	"context"
	"errors"
	"fmt"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

// inventoryLedger は在庫の照会と減算。
// Txの中で作り、そのTxのリポジトリだけを使う。
type inventoryLedger struct {
	inv repo.InventoryRepository
}

func newLedger(r repo.TxRepos) inventoryLedger {
	return inventoryLedger{inv: r.Inventory()}
}

// reserve は数量が今の在庫に収まるかを見るだけで、在庫は確保しない。
func (l inventoryLedger) reserve(ctx context.Context, productID int64, qty int64) (model.Product, error) {
	p, err := l.inv.FindForShare(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("read stock: %w", err)
	}
	if qty > p.Stock {
		return model.Product{}, fmt.Errorf("%w: product %d (requested %d, available %d)", ErrInsufficientStock, productID, qty, p.Stock)
	}
	return p, nil
}

// decrement は在庫を減らす。判定と減算は1文なので在庫がマイナスになることはない。
func (l inventoryLedger) decrement(ctx context.Context, productID int64, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	ok, err := l.inv.DecreaseStockIfEnough(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ok {
		return nil
	}

	//失敗理由の切り分け（商品なし or 在庫不足）
	if _, err := l.inv.FindForShare(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
		return fmt.Errorf("read stock: %w", err)
	}
	return fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
}
