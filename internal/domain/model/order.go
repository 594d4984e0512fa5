package model

import "time"

type OrderStatus string

// 決済ステップはないので作成時点でpaid
const OrderStatusPaid OrderStatus = "paid"

// 作成後は不変。更新・削除はしない。
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64       `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalCents int64       `gorm:"not null" json:"total_cents"`
	Currency   string      `gorm:"type:varchar(3);not null" json:"currency"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
