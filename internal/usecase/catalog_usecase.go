package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

// カテゴリ・ブランドのマスタ
type CatalogUsecase struct {
	catalogRepo repo.CatalogRepository
}

func NewCatalogUsecase(catalogRepo repo.CatalogRepository) *CatalogUsecase {
	return &CatalogUsecase{catalogRepo: catalogRepo}
}

type CatalogEntryInput struct {
	Name        string
	Description string
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cs, err := u.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (u *CatalogUsecase) AdminCreateCategory(ctx context.Context, actor model.Identity, in CatalogEntryInput) (model.Category, error) {
	name, err := validateCatalogEntry(actor, in)
	if err != nil {
		return model.Category{}, err
	}

	c, err := u.catalogRepo.CreateCategory(ctx, model.Category{Name: name, Description: in.Description})
	if errors.Is(err, repo.ErrConflict) {
		return model.Category{}, fmt.Errorf("%w: category %q", ErrConflict, name)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (u *CatalogUsecase) ListBrands(ctx context.Context) ([]model.Brand, error) {
	bs, err := u.catalogRepo.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return bs, nil
}

func (u *CatalogUsecase) AdminCreateBrand(ctx context.Context, actor model.Identity, in CatalogEntryInput) (model.Brand, error) {
	name, err := validateCatalogEntry(actor, in)
	if err != nil {
		return model.Brand{}, err
	}

	b, err := u.catalogRepo.CreateBrand(ctx, model.Brand{Name: name, Description: in.Description})
	if errors.Is(err, repo.ErrConflict) {
		return model.Brand{}, fmt.Errorf("%w: brand %q", ErrConflict, name)
	}
	if err != nil {
		return model.Brand{}, fmt.Errorf("create brand: %w", err)
	}
	return b, nil
}

func validateCatalogEntry(actor model.Identity, in CatalogEntryInput) (string, error) {
	if actor.UserID <= 0 {
		return "", ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return "", ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 120 {
		return "", NewHTTPError(http.StatusBadRequest, "name too long")
	}
	return name, nil
}
