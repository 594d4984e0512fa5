package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	repo "techgear/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users     repo.UserRepository
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	carts     repo.CartRepository
	orders    repo.OrderRepository
}

func (r *txReposGorm) Users() repo.UserRepository          { return r.users }
func (r *txReposGorm) Products() repo.ProductRepository    { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Carts() repo.CartRepository          { return r.carts }
func (r *txReposGorm) Orders() repo.OrderRepository        { return r.orders }

type TxManagerGorm struct {
	db          *gorm.DB
	timeout     time.Duration
	lockTimeout time.Duration
}

// timeoutはトランザクション全体、lockTimeoutは行ロック待ちの上限（0なら設定しない）
func NewTxManagerGorm(db *gorm.DB, timeout time.Duration, lockTimeout time.Duration) *TxManagerGorm {
	return &TxManagerGorm{db: db, timeout: timeout, lockTimeout: lockTimeout}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if tm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.timeout)
		defer cancel()
	}

	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// ロック待ちで詰まらないようにする（このTxの中だけ有効）
		if tm.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", tm.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users:     NewUserGormRepository(tx),
			products:  NewProductGormRepository(tx),
			inventory: NewInventoryGormRepository(tx),
			carts:     NewCartGormRepository(tx),
			orders:    NewOrderGormRepository(tx),
		}
		return fn(r)
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})

	return classify(err)
}
