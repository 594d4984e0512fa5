package model

// 購入時点のスナップショット。商品の価格が変わっても過去の注文は変わらない。
type OrderItem struct {
	ID                  int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64    `gorm:"not null;index" json:"order_id"`
	ProductID           int64    `gorm:"not null;index" json:"product_id"`
	Product             *Product `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	ProductNameSnapshot string   `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceCents      int64    `gorm:"not null" json:"unit_price_cents"`
	Quantity            int64    `gorm:"not null" json:"quantity"`
}

func (it OrderItem) LineTotal() int64 {
	return it.UnitPriceCents * it.Quantity
}
