package product

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/internal/modules/product/dto"
	"anadara.com/exportmarket/internal/modules/product/repository"
	"anadara.com/exportmarket/pkg/apperror"
	commonDto "anadara.com/exportmarket/pkg/dto"
	"anadara.com/exportmarket/pkg/slug"
)

// CategoryResolver is the slice of the category service products need:
// existence checks, subtree expansion and counter refresh.
type CategoryResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetDescendants(ctx context.Context, id uuid.UUID) ([]*entity.Category, error)
	RefreshProductCount(ctx context.Context, id uuid.UUID) error
}

// SearchIndex mirrors product writes into the external search engine.
type SearchIndex interface {
	IndexProduct(ctx context.Context, product *entity.Product) error
	RemoveProduct(ctx context.Context, id uuid.UUID) error
}

type ProductService interface {
	Create(ctx context.Context, exporter *entity.User, req dto.CreateProductRequest) (*entity.Product, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByIdentifier(ctx context.Context, viewer *entity.User, identifier string) (*entity.Product, error)
	GetOwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	List(ctx context.Context, query dto.ListProductsQuery) (*dto.PaginatedProductsResponse, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, includeDescendants bool, page, limit int) (*dto.PaginatedProductsResponse, error)
	Count(ctx context.Context) (int64, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories CategoryResolver
	index      SearchIndex
	sanitizer  *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, categories CategoryResolver, index SearchIndex) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		index:      index,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (s *productService) generateSlug(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	candidate := slug.Make(name)
	if candidate == "" {
		return "", apperror.New(400, "name must contain at least one alphanumeric character", apperror.ErrInvalidInput)
	}
	exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		candidate = slug.WithSuffix(candidate)
	}
	return candidate, nil
}

func (s *productService) Create(ctx context.Context, exporter *entity.User, req dto.CreateProductRequest) (*entity.Product, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apperror.New(400, "category_id must be a UUID", apperror.ErrInvalidInput)
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	productSlug, err := s.generateSlug(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        name,
		Slug:        productSlug,
		Description: s.sanitizer.Sanitize(req.Description),
		CategoryID:  categoryID,
		ExporterID:  exporter.ID,
		Price:       req.Price,
		Currency:    strings.ToUpper(stringOrDefault(req.Currency, "USD")),
		MinOrderQty: intOrDefault(req.MinOrderQty, 1),
		Status:      stringOrDefault(req.Status, entity.ProductDraft),
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("product slug already exists")
		}
		return nil, err
	}

	s.afterWrite(ctx, product, nil)
	return s.repo.FindByID(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldCategoryID := product.CategoryID

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != product.Name {
			newSlug, err := s.generateSlug(ctx, name, id)
			if err != nil {
				return nil, err
			}
			product.Name = name
			product.Slug = newSlug
		}
	}
	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apperror.New(400, "category_id must be a UUID", apperror.ErrInvalidInput)
		}
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Currency != nil {
		product.Currency = strings.ToUpper(*req.Currency)
	}
	if req.MinOrderQty != nil {
		product.MinOrderQty = *req.MinOrderQty
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	// Save without preloaded associations to avoid rewriting them.
	product.Category = nil
	product.Exporter = nil
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("product slug already exists")
		}
		return nil, err
	}

	var staleCategory *uuid.UUID
	if oldCategoryID != product.CategoryID {
		staleCategory = &oldCategoryID
	}
	s.afterWrite(ctx, product, staleCategory)
	return s.repo.FindByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.categories.RefreshProductCount(ctx, product.CategoryID); err != nil {
		log.Printf("failed to refresh product count for category %s: %v", product.CategoryID, err)
	}
	if s.index != nil {
		if err := s.index.RemoveProduct(ctx, id); err != nil {
			log.Printf("failed to remove product %s from search index: %v", id, err)
		}
	}
	return nil
}

// GetByIdentifier accepts an ID or a slug. Non-public products are only
// visible to their owner and admins.
func (s *productService) GetByIdentifier(ctx context.Context, viewer *entity.User, identifier string) (*entity.Product, error) {
	var product *entity.Product
	var err error

	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		product, err = s.repo.FindByID(ctx, id)
	} else {
		product, err = s.repo.FindBySlug(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, err
	}

	public := product.Status == entity.ProductActive && product.IsActive
	if !public {
		owner := viewer != nil && (viewer.ID == product.ExporterID || viewer.Role == entity.RoleAdmin)
		if !owner {
			return nil, apperror.NotFound("product not found")
		}
	}
	return product, nil
}

func (s *productService) GetOwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return product.ExporterID, nil
}

func (s *productService) List(ctx context.Context, query dto.ListProductsQuery) (*dto.PaginatedProductsResponse, error) {
	filter := repository.Filter{
		PublicOnly: true,
		Search:     query.Search,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
	}
	if query.CategoryID != "" {
		categoryID, err := uuid.Parse(query.CategoryID)
		if err != nil {
			return nil, apperror.New(400, "category_id must be a UUID", apperror.ErrInvalidInput)
		}
		filter.CategoryIDs = []uuid.UUID{categoryID}
	}
	if query.Exporter != "" {
		exporterID, err := uuid.Parse(query.Exporter)
		if err != nil {
			return nil, apperror.New(400, "exporter must be a UUID", apperror.ErrInvalidInput)
		}
		filter.ExporterID = &exporterID
	}

	offset := (query.Page - 1) * query.Limit
	products, total, err := s.repo.FindAll(ctx, filter, offset, query.Limit)
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedProductsResponse{
		Products: dto.ToProductResponses(products),
		Meta:     commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

// ListByCategory serves the category products endpoint; with
// includeDescendants the whole subtree contributes.
func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID, includeDescendants bool, page, limit int) (*dto.PaginatedProductsResponse, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	categoryIDs := []uuid.UUID{category.ID}
	if includeDescendants {
		descendants, err := s.categories.GetDescendants(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range descendants {
			categoryIDs = append(categoryIDs, d.ID)
		}
	}

	offset := (page - 1) * limit
	products, total, err := s.repo.FindAll(ctx, repository.Filter{
		PublicOnly:  true,
		CategoryIDs: categoryIDs,
	}, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedProductsResponse{
		Category: &dto.CategorySummary{
			ID:   category.ID,
			Name: category.Name,
			Slug: category.Slug,
			Path: category.Path,
		},
		Products: dto.ToProductResponses(products),
		Meta:     commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *productService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *productService) findByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) afterWrite(ctx context.Context, product *entity.Product, staleCategory *uuid.UUID) {
	if err := s.categories.RefreshProductCount(ctx, product.CategoryID); err != nil {
		log.Printf("failed to refresh product count for category %s: %v", product.CategoryID, err)
	}
	if staleCategory != nil {
		if err := s.categories.RefreshProductCount(ctx, *staleCategory); err != nil {
			log.Printf("failed to refresh product count for category %s: %v", *staleCategory, err)
		}
	}
	if s.index != nil {
		if err := s.index.IndexProduct(ctx, product); err != nil {
			log.Printf("failed to index product %s: %v", product.ID, err)
		}
	}
}

func stringOrDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
