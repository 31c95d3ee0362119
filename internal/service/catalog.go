package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/transport"
)

// ProductIndex is a full text index over the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) ([]uint, int64, error)
}

type CatalogService struct {
	Repo repo.Store
	// Index is optional; without it search falls back to SQL.
	Index ProductIndex
}

func (s *CatalogService) ListProducts(ctx context.Context, page, size int) (*transport.ProductPage, error) {
	from, limit, page := pageBounds(page, size)
	items, total, err := s.Repo.ListProducts(ctx, from, limit)
	if err != nil {
		return nil, err
	}
	return productPage(items, total, page, limit), nil
}

func productPage(items []models.Product, total int64, page, size int) *transport.ProductPage {
	out := &transport.ProductPage{Total: total, Page: page, Size: size, Products: make([]transport.ProductView, 0, len(items))}
	for _, p := range items {
		out.Products = append(out.Products, transport.NewProductView(p))
	}
	return out
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uint) (*transport.ProductView, error) {
	p, err := s.Repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}
	v := transport.NewProductView(*p)
	return &v, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*transport.ProductPage, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	from, limit, page := pageBounds(page, size)

	if s.Index == nil {
		items, total, err := s.Repo.SearchProducts(ctx, q, from, limit)
		if err != nil {
			return nil, err
		}
		return productPage(items, total, page, limit), nil
	}

	ids, total, err := s.Index.Search(ctx, q, from, limit)
	if err != nil {
		return nil, err
	}
	found, err := s.Repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			items = append(items, p)
		}
	}
	return productPage(items, total, page, limit), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, id *auth.Identity, req transport.ProductRequest) (*transport.ProductView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	p := models.Product{}
	if err := s.applyProduct(ctx, &p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	s.reindex(ctx, p)
	v := transport.NewProductView(p)
	return &v, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id *auth.Identity, productID uint, req transport.ProductRequest) (*transport.ProductView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	p, err := s.Repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if err := s.applyProduct(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.reindex(ctx, *p)
	v := transport.NewProductView(*p)
	return &v, nil
}

// DeleteProduct removes a catalog entry. Placed orders keep their frozen prices;
// open cart lines for it become unorderable.
func (s *CatalogService) DeleteProduct(ctx context.Context, id *auth.Identity, productID uint) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if _, err := s.Repo.FindProductByID(ctx, productID); err != nil {
		return notFound(err, "product")
	}
	if err := s.Repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, productID); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_error", "product_id", productID, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) applyProduct(ctx context.Context, p *models.Product, req transport.ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if req.CategoryID != nil {
		if _, err := s.Repo.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: category %d does not exist", ErrValidation, *req.CategoryID)
			}
			return err
		}
	}
	p.Name = name
	p.Price = req.Price.Round(2)
	p.Description = strings.TrimSpace(req.Description)
	p.Image = strings.TrimSpace(req.Image)
	p.CategoryID = req.CategoryID
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, id *auth.Identity, req transport.CategoryRequest) (*models.Category, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := s.Repo.FindCategoryByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := models.Category{Name: name, Description: strings.TrimSpace(req.Description)}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &c, nil
}
