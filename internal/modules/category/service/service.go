package category

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/internal/modules/category/dto"
	"anadara.com/exportmarket/internal/modules/category/repository"
	"anadara.com/exportmarket/pkg/apperror"
	"anadara.com/exportmarket/pkg/slug"
)

const (
	treeCacheKey = "categories:tree"
	treeCacheTTL = 5 * time.Minute
)

// ProductCounter reports how many products reference a category. Implemented
// by the product repository; kept narrow to avoid a module cycle.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// SearchIndex mirrors category writes into the external search engine. A nil
// index disables mirroring and falls search back to the database.
type SearchIndex interface {
	IndexCategory(ctx context.Context, category *entity.Category) error
	RemoveCategory(ctx context.Context, id uuid.UUID) error
	SearchCategoryIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*entity.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query dto.ListCategoriesQuery) ([]*entity.Category, error)
	BuildTree(ctx context.Context, rootID *uuid.UUID) ([]*dto.TreeNode, error)
	GetByIdentifier(ctx context.Context, identifier string) (*dto.CategoryDetailResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetDescendants(ctx context.Context, id uuid.UUID) ([]*entity.Category, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Category, error)
	Reorder(ctx context.Context, id uuid.UUID, newOrder int) (*entity.Category, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	RefreshProductCount(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type categoryService struct {
	repo      repository.CategoryRepository
	products  ProductCounter
	index     SearchIndex
	rdb       *redis.Client
	sanitizer *bluemonday.Policy
}

func NewCategoryService(repo repository.CategoryRepository, products ProductCounter, index SearchIndex, rdb *redis.Client) CategoryService {
	return &categoryService{
		repo:      repo,
		products:  products,
		index:     index,
		rdb:       rdb,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// generateSlug normalizes the name and disambiguates collisions with a
// time-based suffix so the write never blocks on uniqueness.
func (s *categoryService) generateSlug(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
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

// derive recomputes level and path from the resolved parent.
func derive(category *entity.Category, parent *entity.Category) {
	if parent == nil {
		category.Level = 0
		category.Path = category.Slug
		return
	}
	category.Level = parent.Level + 1
	category.Path = parent.Path + "/" + category.Slug
}

func (s *categoryService) resolveParent(ctx context.Context, parentID *uuid.UUID) (*entity.Category, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := s.repo.FindByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("parent category not found")
		}
		return nil, err
	}
	return parent, nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)

	if existing, err := s.repo.FindByName(ctx, name); err == nil && existing != nil {
		return nil, apperror.Conflict("category name already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	categorySlug, err := s.generateSlug(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	parentID, err := parseParentID(req.ParentID)
	if err != nil {
		return nil, err
	}
	parent, err := s.resolveParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: s.sanitizer.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		ParentID:    parentID,
		IsActive:    boolOrDefault(req.IsActive, true),
		IsVisible:   boolOrDefault(req.IsVisible, true),
		IsFeatured:  boolOrDefault(req.IsFeatured, false),
		ShowOnHome:  boolOrDefault(req.ShowOnHome, false),
	}
	derive(category, parent)

	err = s.repo.Transaction(ctx, func(tx repository.CategoryRepository) error {
		siblingCount, err := tx.CountSiblings(ctx, parentID)
		if err != nil {
			return err
		}

		// Append at the end of the sibling group by default; an explicit
		// position makes room by shifting the tail right.
		order := int(siblingCount)
		if req.DisplayOrder != nil && *req.DisplayOrder < order {
			order = *req.DisplayOrder
			if err := tx.ShiftDisplayOrders(ctx, parentID, order, int(siblingCount)-1, 1); err != nil {
				return err
			}
		}
		category.DisplayOrder = order

		return tx.Create(ctx, category)
	})
	if err != nil {
		return nil, translateDuplicate(err)
	}

	s.afterWrite(ctx, category)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPath := category.Path
	oldParentID := category.ParentID
	slugChanged := false

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != category.Name {
			if existing, err := s.repo.FindByName(ctx, name); err == nil && existing != nil && existing.ID != id {
				return nil, apperror.Conflict("category name already exists")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}

			newSlug, err := s.generateSlug(ctx, name, id)
			if err != nil {
				return nil, err
			}
			category.Name = name
			category.Slug = newSlug
			slugChanged = true
		}
	}

	parentChanged := false
	newParentID := category.ParentID
	if req.ParentID != nil {
		parsed, err := parseParentID(req.ParentID)
		if err != nil {
			return nil, err
		}
		if !sameParent(category.ParentID, parsed) {
			if err := s.checkCycle(ctx, category, parsed); err != nil {
				return nil, err
			}
			newParentID = parsed
			parentChanged = true
		}
	}

	if req.Description != nil {
		category.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.ImageURL != nil {
		category.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.IsVisible != nil {
		category.IsVisible = *req.IsVisible
	}
	if req.IsFeatured != nil {
		category.IsFeatured = *req.IsFeatured
	}
	if req.ShowOnHome != nil {
		category.ShowOnHome = *req.ShowOnHome
	}

	if parentChanged || slugChanged {
		category.ParentID = newParentID
		parent, err := s.resolveParent(ctx, newParentID)
		if err != nil {
			return nil, err
		}
		oldLevel := category.Level
		derive(category, parent)

		err = s.repo.Transaction(ctx, func(tx repository.CategoryRepository) error {
			if parentChanged {
				// Close the gap in the old sibling group and append at the
				// end of the new one so both stay dense.
				if err := tx.ShiftDisplayOrders(ctx, oldParentID, category.DisplayOrder+1, 1<<30, -1); err != nil {
					return err
				}
				siblingCount, err := tx.CountSiblings(ctx, newParentID)
				if err != nil {
					return err
				}
				category.DisplayOrder = int(siblingCount)
			}

			if err := tx.Save(ctx, category); err != nil {
				return err
			}

			// The whole subtree inherits the new path and depth.
			if oldPath != category.Path {
				return tx.RewritePathPrefix(ctx, oldPath, category.Path, category.Level-oldLevel)
			}
			return nil
		})
		if err != nil {
			return nil, translateDuplicate(err)
		}
	} else {
		if err := s.repo.Save(ctx, category); err != nil {
			return nil, translateDuplicate(err)
		}
	}

	s.afterWrite(ctx, category)
	return category, nil
}

// checkCycle rejects a reparent onto the category itself or any of its
// descendants, found by materialized-path prefix match.
func (s *categoryService) checkCycle(ctx context.Context, category *entity.Category, newParentID *uuid.UUID) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == category.ID {
		return apperror.InvalidOperation("category cannot be its own parent")
	}

	descendants, err := s.repo.FindDescendants(ctx, category.Path)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		if d.ID == *newParentID {
			return apperror.InvalidOperation("cannot create circular reference")
		}
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperror.InvalidOperation("cannot delete category with subcategories")
	}

	productCount, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return apperror.InvalidOperation("cannot delete category with products")
	}

	err = s.repo.Transaction(ctx, func(tx repository.CategoryRepository) error {
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		// Keep the remaining sibling group dense.
		return tx.ShiftDisplayOrders(ctx, category.ParentID, category.DisplayOrder+1, 1<<30, -1)
	})
	if err != nil {
		return err
	}

	s.invalidateTreeCache(ctx)
	if s.index != nil {
		if err := s.index.RemoveCategory(ctx, id); err != nil {
			log.Printf("failed to remove category %s from search index: %v", id, err)
		}
	}
	return nil
}

func (s *categoryService) List(ctx context.Context, query dto.ListCategoriesQuery) ([]*entity.Category, error) {
	filter := repository.Filter{
		PublicOnly: true,
		Level:      query.Level,
		Featured:   query.Featured,
		Homepage:   query.Homepage,
	}

	if query.Parent != "" {
		if query.Parent == "null" {
			filter.RootsOnly = true
		} else {
			parentID, err := uuid.Parse(query.Parent)
			if err != nil {
				return nil, apperror.New(400, "parent must be a UUID or \"null\"", apperror.ErrInvalidInput)
			}
			filter.ParentID = &parentID
		}
	}

	return s.repo.FindAll(ctx, filter)
}

// BuildTree assembles the nested projection, active categories only, in the
// canonical (display_order, name) order at every level. The full tree is
// cached in redis for a short window.
func (s *categoryService) BuildTree(ctx context.Context, rootID *uuid.UUID) ([]*dto.TreeNode, error) {
	cacheable := rootID == nil
	if cacheable {
		if cached, ok := s.cachedTree(ctx); ok {
			return cached, nil
		}
	}

	tree, err := s.buildSubtree(ctx, rootID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheTree(ctx, tree)
	}
	return tree, nil
}

func (s *categoryService) buildSubtree(ctx context.Context, parentID *uuid.UUID) ([]*dto.TreeNode, error) {
	children, err := s.repo.FindChildren(ctx, parentID, true)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.TreeNode, 0, len(children))
	for _, child := range children {
		node := &dto.TreeNode{CategoryResponse: dto.ToCategoryResponse(child)}
		node.Children, err = s.buildSubtree(ctx, &child.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetByIdentifier accepts either an ID or a slug; slug lookups only surface
// publicly listed categories.
func (s *categoryService) GetByIdentifier(ctx context.Context, identifier string) (*dto.CategoryDetailResponse, error) {
	var category *entity.Category
	var err error

	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		category, err = s.repo.FindByID(ctx, id)
	} else {
		category, err = s.repo.FindBySlug(ctx, identifier)
		if err == nil && (!category.IsActive || !category.IsVisible) {
			return nil, apperror.NotFound("category not found")
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, err
	}

	ancestors, err := s.getAncestors(ctx, category)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.FindChildren(ctx, &category.ID, false)
	if err != nil {
		return nil, err
	}
	siblings, err := s.repo.FindSiblings(ctx, category.ParentID, category.ID)
	if err != nil {
		return nil, err
	}

	return &dto.CategoryDetailResponse{
		Category:   dto.ToCategoryResponse(category),
		Breadcrumb: breadcrumb(category),
		Ancestors:  dto.ToCategoryResponses(ancestors),
		Children:   dto.ToCategoryResponses(children),
		Siblings:   dto.ToCategoryResponses(siblings),
	}, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetDescendants(ctx context.Context, id uuid.UUID) ([]*entity.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindDescendants(ctx, category.Path)
}

// getAncestors walks parent links up to the root; the result is ordered root
// first. Depth is bounded by the taxonomy, so point lookups are fine.
func (s *categoryService) getAncestors(ctx context.Context, category *entity.Category) ([]*entity.Category, error) {
	var ancestors []*entity.Category
	currentID := category.ParentID

	for currentID != nil {
		parent, err := s.repo.FindByID(ctx, *currentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		ancestors = append([]*entity.Category{parent}, ancestors...)
		currentID = parent.ParentID
	}
	return ancestors, nil
}

func (s *categoryService) Search(ctx context.Context, query string, limit int) ([]*entity.Category, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	if s.index != nil {
		ids, err := s.index.SearchCategoryIDs(ctx, query, limit)
		if err == nil {
			return s.fetchOrdered(ctx, ids)
		}
		log.Printf("search index unavailable, falling back to database: %v", err)
	}

	return s.repo.Search(ctx, query, limit)
}

func (s *categoryService) fetchOrdered(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error) {
	if len(ids) == 0 {
		return []*entity.Category{}, nil
	}
	categories, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	ordered := make([]*entity.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// Reorder moves the category to newOrder within its sibling group, shifting
// the affected neighbors so orders stay dense. The shift and the final set
// happen in one transaction.
func (s *categoryService) Reorder(ctx context.Context, id uuid.UUID, newOrder int) (*entity.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	siblingCount, err := s.repo.CountSiblings(ctx, category.ParentID)
	if err != nil {
		return nil, err
	}

	if newOrder > int(siblingCount)-1 {
		newOrder = int(siblingCount) - 1
	}
	if newOrder < 0 {
		newOrder = 0
	}

	oldOrder := category.DisplayOrder
	if newOrder == oldOrder {
		return category, nil
	}

	err = s.repo.Transaction(ctx, func(tx repository.CategoryRepository) error {
		if newOrder > oldOrder {
			// Moving down: neighbors in (oldOrder, newOrder] shift toward
			// the vacated slot.
			if err := tx.ShiftDisplayOrders(ctx, category.ParentID, oldOrder+1, newOrder, -1); err != nil {
				return err
			}
		} else {
			// Moving up: neighbors in [newOrder, oldOrder) make room.
			if err := tx.ShiftDisplayOrders(ctx, category.ParentID, newOrder, oldOrder-1, 1); err != nil {
				return err
			}
		}
		return tx.SetDisplayOrder(ctx, id, newOrder)
	})
	if err != nil {
		return nil, err
	}

	category.DisplayOrder = newOrder
	s.invalidateTreeCache(ctx)
	return category, nil
}

func (s *categoryService) ToggleStatus(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.IsActive = !category.IsActive
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, category)
	return category, nil
}

// RefreshProductCount recomputes the eventually-consistent product counter.
func (s *categoryService) RefreshProductCount(ctx context.Context, id uuid.UUID) error {
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.SetProductCount(ctx, id, int(count))
}

func (s *categoryService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// afterWrite runs the post-persist tail of the write pipeline: product count
// recompute, cache invalidation, search reindex. Failures are logged, never
// surfaced — the write itself already committed.
func (s *categoryService) afterWrite(ctx context.Context, category *entity.Category) {
	if err := s.RefreshProductCount(ctx, category.ID); err != nil {
		log.Printf("failed to refresh product count for category %s: %v", category.ID, err)
	}
	s.invalidateTreeCache(ctx)
	if s.index != nil {
		if err := s.index.IndexCategory(ctx, category); err != nil {
			log.Printf("failed to index category %s: %v", category.ID, err)
		}
	}
}

func (s *categoryService) cachedTree(ctx context.Context) ([]*dto.TreeNode, bool) {
	if s.rdb == nil {
		return nil, false
	}
	payload, err := s.rdb.Get(ctx, treeCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*dto.TreeNode
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

func (s *categoryService) cacheTree(ctx context.Context, tree []*dto.TreeNode) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, treeCacheKey, payload, treeCacheTTL).Err(); err != nil {
		log.Printf("failed to cache category tree: %v", err)
	}
}

func (s *categoryService) invalidateTreeCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, treeCacheKey).Err(); err != nil {
		log.Printf("failed to invalidate category tree cache: %v", err)
	}
}

// breadcrumb expands the materialized path into (name, slug, path) hops.
func breadcrumb(category *entity.Category) []dto.BreadcrumbEntry {
	if category.Path == "" {
		return []dto.BreadcrumbEntry{{Name: category.Name, Slug: category.Slug, Path: category.Slug}}
	}

	parts := strings.Split(category.Path, "/")
	entries := make([]dto.BreadcrumbEntry, 0, len(parts))
	for i, part := range parts {
		name := part
		if i == len(parts)-1 {
			name = category.Name
		}
		entries = append(entries, dto.BreadcrumbEntry{
			Name: name,
			Slug: part,
			Path: strings.Join(parts[:i+1], "/"),
		})
	}
	return entries
}

func parseParentID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperror.New(400, "parent_id must be a UUID or \"null\"", apperror.ErrInvalidInput)
	}
	return &id, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolOrDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("category name or slug already exists")
	}
	return err
}
