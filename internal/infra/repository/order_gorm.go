package repository

import (
	"context"
	"time"

	"techgear/internal/domain/model"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文と明細を作る。確定のトランザクションの中で呼ぶこと
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.Items = nil

	db := r.db.WithContext(ctx)
	if err := db.Create(&order).Error; err != nil {
		return model.Order{}, classify(err)
	}

	saved := make([]model.OrderItem, len(items))
	copy(saved, items)
	for i := range saved {
		saved[i].OrderID = order.ID
	}
	if len(saved) > 0 {
		if err := db.Create(&saved).Error; err != nil {
			return model.Order{}, classify(err)
		}
	}

	order.Items = saved
	return order, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, classify(err)
	}
	if len(orders) == 0 {
		return []model.Order{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var items []model.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.Order{}, classify(err)
	}

	byOrder := make(map[int64][]model.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}
	return orders, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
		return model.Order{}, classify(err)
	}

	var items []model.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return model.Order{}, classify(err)
	}
	o.Items = items
	return o, nil
}
