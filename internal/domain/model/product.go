package model

import "time"

const DefaultCurrency = "USD"

type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	PriceCents  int64     `gorm:"not null;default:0" json:"price_cents"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Stock       int64     `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"image_url"`
	CategoryID  *int64    `gorm:"index" json:"category_id"`
	BrandID     *int64    `gorm:"index" json:"brand_id"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Brand       *Brand    `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

type Brand struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
