package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"techgear/internal/config"
	"techgear/internal/domain/model"
	"techgear/internal/infra/db"
	infraRepo "techgear/internal/infra/repository"
	"techgear/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("techgear"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gormDB, err := db.Connect(config.Config{DatabaseURL: dsn, LogLevel: "error"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type integrationFixture struct {
	db       *gorm.DB
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

func newIntegrationFixture(gormDB *gorm.DB, lockTimeout time.Duration) integrationFixture {
	txm := infraRepo.NewTxManagerGorm(gormDB, 10*time.Second, lockTimeout)
	return integrationFixture{
		db:       gormDB,
		cart:     usecase.NewCartUsecase(txm),
		checkout: usecase.NewCheckoutUsecase(txm, nil),
	}
}

func seedUser(t *testing.T, gormDB *gorm.DB, email string) model.Identity {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, infraRepo.NewUserGormRepository(gormDB).Create(context.Background(), u))
	return model.Identity{UserID: u.ID}
}

func seedProduct(t *testing.T, gormDB *gorm.DB, name string, price int64, stock int64) model.Product {
	t.Helper()
	p, err := infraRepo.NewProductGormRepository(gormDB).Create(context.Background(), model.Product{
		Name:       name,
		PriceCents: price,
		Currency:   "USD",
		Stock:      stock,
	})
	require.NoError(t, err)
	return p
}

func currentStock(t *testing.T, gormDB *gorm.DB, productID int64) int64 {
	t.Helper()
	p, err := infraRepo.NewProductGormRepository(gormDB).FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestIntegration_Checkout(t *testing.T) {
	gormDB := setupPostgres(t)
	fx := newIntegrationFixture(gormDB, 2*time.Second)
	ctx := context.Background()

	t.Run("scenario", func(t *testing.T) {
		user := seedUser(t, gormDB, "scenario@example.com")
		p := seedProduct(t, gormDB, "Mouse", 500, 10)

		_, err := fx.cart.AddToCart(ctx, user, usecase.AddToCartInput{ProductID: p.ID, Quantity: 3})
		require.NoError(t, err)
		cart, err := fx.cart.AddToCart(ctx, user, usecase.AddToCartInput{ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int64(5), cart.Items[0].Quantity)

		order, err := fx.checkout.Checkout(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(2500), order.TotalCents)
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(500), order.Items[0].UnitPriceCents)
		assert.Equal(t, int64(5), currentStock(t, gormDB, p.ID))

		var closed model.Cart
		require.NoError(t, gormDB.First(&closed, cart.ID).Error)
		assert.Equal(t, model.CartStatusCheckedOut, closed.Status)

		next, err := fx.cart.GetCart(ctx, user)
		require.NoError(t, err)
		assert.NotEqual(t, cart.ID, next.ID)
		assert.Empty(t, next.Items)
	})

	t.Run("concurrent checkouts never oversell", func(t *testing.T) {
		p := seedProduct(t, gormDB, "Keyboard", 7000, 10)

		const users = 8
		ids := make([]model.Identity, users)
		for i := range ids {
			ids[i] = seedUser(t, gormDB, fmt.Sprintf("buyer%d@example.com", i))
			_, err := fx.cart.AddToCart(ctx, ids[i], usecase.AddToCartInput{ProductID: p.ID, Quantity: 3})
			require.NoError(t, err)
		}

		var g errgroup.Group
		var mu sync.Mutex
		placed := 0
		for _, id := range ids {
			g.Go(func() error {
				_, err := fx.checkout.Checkout(ctx, id)
				if err != nil {
					assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
					return nil
				}
				mu.Lock()
				placed++
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, 3, placed)
		assert.Equal(t, int64(1), currentStock(t, gormDB, p.ID))
	})

	t.Run("two concurrent adds of six against ten", func(t *testing.T) {
		user := seedUser(t, gormDB, "racer@example.com")
		p := seedProduct(t, gormDB, "Hub", 1500, 10)

		var g errgroup.Group
		errs := make([]error, 2)
		for i := range errs {
			g.Go(func() error {
				_, errs[i] = fx.cart.AddToCart(ctx, user, usecase.AddToCartInput{ProductID: p.ID, Quantity: 6})
				return nil
			})
		}
		require.NoError(t, g.Wait())

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
			}
		}
		assert.Equal(t, 1, ok)

		var active int64
		require.NoError(t, gormDB.Model(&model.Cart{}).
			Where("user_id = ? AND status = ?", user.UserID, model.CartStatusActive).
			Count(&active).Error)
		assert.Equal(t, int64(1), active)

		_, err := fx.checkout.Checkout(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(4), currentStock(t, gormDB, p.ID))
	})

	t.Run("stock check constraint", func(t *testing.T) {
		p := seedProduct(t, gormDB, "Cable", 300, 1)
		err := gormDB.Exec("UPDATE products SET stock = -1 WHERE id = ?", p.ID).Error
		assert.Error(t, err)
	})
}

func TestIntegration_LockTimeoutIsBusy(t *testing.T) {
	gormDB := setupPostgres(t)
	fx := newIntegrationFixture(gormDB, 200*time.Millisecond)
	ctx := context.Background()

	user := seedUser(t, gormDB, "locked@example.com")

	// 別のTxがユーザー行を握ったまま
	holder := gormDB.Begin()
	require.NoError(t, holder.Error)
	defer holder.Rollback()
	require.NoError(t, holder.Exec("SELECT id FROM users WHERE id = ? FOR UPDATE", user.UserID).Error)

	start := time.Now()
	_, err := fx.cart.GetCart(ctx, user)
	assert.ErrorIs(t, err, usecase.ErrBusy)
	assert.Less(t, time.Since(start), 5*time.Second)
}
