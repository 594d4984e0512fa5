package repository

import (
	"context"

	"techgear/internal/domain/model"

	"gorm.io/gorm"
)

// カテゴリ・ブランド
type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return []model.Category{}, classify(err)
	}
	return items, nil
}

// 名前重複はErrConflict
func (r *CatalogGormRepository) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, classify(err)
	}
	return c, nil
}

func (r *CatalogGormRepository) ListBrands(ctx context.Context) ([]model.Brand, error) {
	var items []model.Brand
	if err := r.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return []model.Brand{}, classify(err)
	}
	return items, nil
}

func (r *CatalogGormRepository) CreateBrand(ctx context.Context, b model.Brand) (model.Brand, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Brand{}, classify(err)
	}
	return b, nil
}
