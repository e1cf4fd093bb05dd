package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInvalid  = errors.New("product title is required")
)

// Product is one independent product record.
type Product struct {
	ID     string       `json:"id"`
	Fields content.Tree `json:"fields"`
}

// Title returns hero.title, or an empty string.
func (p Product) Title() string {
	title, _ := content.Lookup(p.Fields, "hero.title")
	s, _ := title.(string)
	return s
}

// ProductService manages the products collection.
type ProductService struct {
	store store.Store
}

func NewProductService(st store.Store) *ProductService {
	return &ProductService{store: st}
}

// Create stores a new record shaped like the product template.
func (s *ProductService) Create(ctx context.Context, record content.Tree) (*Product, error) {
	normalized, err := content.NormalizeTree(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductInvalid, err)
	}
	fields := content.WithDefaults(normalized, content.ProductTemplate())

	product := Product{Fields: fields}
	if strings.TrimSpace(product.Title()) == "" {
		return nil, ErrProductInvalid
	}

	id, err := s.store.Add(ctx, content.ProductsCollection, fields)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	product.ID = id
	return &product, nil
}

// List returns every product with missing fields filled from the template.
func (s *ProductService) List(ctx context.Context) ([]Product, error) {
	docs, err := s.store.List(ctx, content.ProductsCollection)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Product{ID: doc.ID, Fields: content.WithDefaults(doc.Fields, content.ProductTemplate())})
	}
	return out, nil
}

// Delete removes the product. Unknown ids are an error.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrProductNotFound
	}
	if _, err := s.store.Get(ctx, content.ProductsCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return fmt.Errorf("check product %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, content.ProductsCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
