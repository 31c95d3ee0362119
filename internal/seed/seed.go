// Package seed loads an initial catalog from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
)

type Catalog struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Product prices are strings so that YAML never turns them into floats.
type Product struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Category    string `yaml:"category"`
}

type Result struct {
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
	// Created holds the new product rows, for indexing.
	Created []models.Product
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &c, nil
}

// Apply inserts the categories and products that do not exist yet, matched by name.
// Running it twice creates nothing the second time.
func Apply(ctx context.Context, store repo.Store, c *Catalog) (*Result, error) {
	res := &Result{}
	err := store.Transaction(ctx, func(tx repo.Store) error {
		*res = Result{}
		byName := map[string]uint{}

		for _, sc := range c.Categories {
			name := strings.TrimSpace(sc.Name)
			if name == "" {
				return errors.New("category without a name")
			}
			existing, err := tx.FindCategoryByName(ctx, name)
			switch {
			case err == nil:
				byName[name] = existing.ID
				res.Skipped++
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			cat := models.Category{Name: name, Description: sc.Description}
			if err := tx.CreateCategory(ctx, &cat); err != nil {
				return fmt.Errorf("create category %q: %w", name, err)
			}
			byName[name] = cat.ID
			res.CategoriesCreated++
		}

		for _, sp := range c.Products {
			p, err := productRow(ctx, tx, sp, byName)
			if err != nil {
				return err
			}
			if _, err := tx.FindProductByName(ctx, p.Name); err == nil {
				res.Skipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.CreateProduct(ctx, &p); err != nil {
				return fmt.Errorf("create product %q: %w", p.Name, err)
			}
			res.Created = append(res.Created, p)
			res.ProductsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("catalog_seeded",
		"categories_created", res.CategoriesCreated,
		"products_created", res.ProductsCreated,
		"skipped", res.Skipped,
	)
	return res, nil
}

func productRow(ctx context.Context, tx repo.Store, sp Product, byName map[string]uint) (models.Product, error) {
	name := strings.TrimSpace(sp.Name)
	if name == "" {
		return models.Product{}, errors.New("product without a name")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(sp.Price))
	if err != nil {
		return models.Product{}, fmt.Errorf("product %q: bad price %q", name, sp.Price)
	}
	if price.IsNegative() {
		return models.Product{}, fmt.Errorf("product %q: negative price", name)
	}

	p := models.Product{
		Name:        name,
		Price:       price.Round(2),
		Description: sp.Description,
		Image:       sp.Image,
	}
	if cn := strings.TrimSpace(sp.Category); cn != "" {
		id, ok := byName[cn]
		if !ok {
			cat, err := tx.FindCategoryByName(ctx, cn)
			if err != nil {
				return models.Product{}, fmt.Errorf("product %q: unknown category %q", name, cn)
			}
			id = cat.ID
		}
		p.CategoryID = &id
	}
	return p, nil
}
