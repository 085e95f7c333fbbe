package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"anadara.com/exportmarket/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const (
	categoriesIndex = "categories"
	productsIndex   = "products"
)

// SearchService mirrors categories and products into Meilisearch and serves
// free-text category lookups.
type SearchService interface {
	IndexCategory(ctx context.Context, category *entity.Category) error
	RemoveCategory(ctx context.Context, id uuid.UUID) error
	SearchCategoryIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
	IndexProduct(ctx context.Context, product *entity.Product) error
	RemoveProduct(ctx context.Context, id uuid.UUID) error
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	categoryFilterable := []any{"is_active", "is_visible", "level"}
	if _, err := s.client.Index(categoriesIndex).UpdateFilterableAttributes(&categoryFilterable); err != nil {
		log.Printf("failed to update %s filterable attributes: %v", categoriesIndex, err)
	}

	productFilterable := []any{"category_id", "status", "is_active"}
	if _, err := s.client.Index(productsIndex).UpdateFilterableAttributes(&productFilterable); err != nil {
		log.Printf("failed to update %s filterable attributes: %v", productsIndex, err)
	}

	productSortable := []string{"price"}
	if _, err := s.client.Index(productsIndex).UpdateSortableAttributes(&productSortable); err != nil {
		log.Printf("failed to update %s sortable attributes: %v", productsIndex, err)
	}
}

type categoryDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Level       int    `json:"level"`
	IsActive    bool   `json:"is_active"`
	IsVisible   bool   `json:"is_visible"`
}

type productDoc struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	IsActive    bool    `json:"is_active"`
}

func (s *searchService) IndexCategory(ctx context.Context, category *entity.Category) error {
	doc := categoryDoc{
		ID:          category.ID.String(),
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		Path:        category.Path,
		Level:       category.Level,
		IsActive:    category.IsActive,
		IsVisible:   category.IsVisible,
	}

	_, err := s.client.Index(categoriesIndex).AddDocuments([]categoryDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) RemoveCategory(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(categoriesIndex).DeleteDocument(id.String())
	return err
}

// SearchCategoryIDs returns matching category IDs in relevance order,
// restricted to publicly listed categories.
func (s *searchService) SearchCategoryIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	resp, err := s.client.Index(categoriesIndex).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: "is_active = true AND is_visible = true",
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &hits); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("malformed id in search hit: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *searchService) IndexProduct(ctx context.Context, product *entity.Product) error {
	doc := productDoc{
		ID:          product.ID.String(),
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		CategoryID:  product.CategoryID.String(),
		Price:       product.Price,
		Status:      product.Status,
		IsActive:    product.IsActive,
	}

	_, err := s.client.Index(productsIndex).AddDocuments([]productDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(productsIndex).DeleteDocument(id.String())
	return err
}

func strPtr(s string) *string {
	return &s
}
