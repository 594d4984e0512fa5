package model

import "time"

type CartStatus string

const (
	CartStatusActive     CartStatus = "active"
	CartStatusCheckedOut CartStatus = "checked_out"
)

// 1ユーザーにつきactiveは1つ（DB制約ではなくアプリ側で保証）
// Itemsはリポジトリが明示的に詰める。
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;index:idx_carts_user_status" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;index:idx_carts_user_status" json:"status"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// 指定商品の明細を探す
func (c Cart) Item(productID int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
