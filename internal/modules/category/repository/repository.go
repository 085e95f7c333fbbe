package repository

import (
	"context"

	"anadara.com/exportmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows flat category listings.
type Filter struct {
	Level      *int
	ParentID   *uuid.UUID
	RootsOnly  bool
	Featured   bool
	Homepage   bool
	PublicOnly bool // is_active AND is_visible
	ActiveOnly bool
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Save(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	FindAll(ctx context.Context, filter Filter) ([]*entity.Category, error)
	FindChildren(ctx context.Context, parentID *uuid.UUID, activeOnly bool) ([]*entity.Category, error)
	FindSiblings(ctx context.Context, parentID *uuid.UUID, excludeID uuid.UUID) ([]*entity.Category, error)
	FindDescendants(ctx context.Context, path string) ([]*entity.Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	CountSiblings(ctx context.Context, parentID *uuid.UUID) (int64, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Category, error)
	Count(ctx context.Context) (int64, error)

	ShiftDisplayOrders(ctx context.Context, parentID *uuid.UUID, min, max, delta int) error
	SetDisplayOrder(ctx context.Context, id uuid.UUID, order int) error
	RewritePathPrefix(ctx context.Context, oldPath, newPath string, levelDelta int) error
	SetProductCount(ctx context.Context, id uuid.UUID, count int) error

	// Transaction runs fn against a repository bound to one database
	// transaction; multi-row shifts and path rewrites go through it.
	Transaction(ctx context.Context, fn func(repo CategoryRepository) error) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Save(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error) {
	var categories []*entity.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Category{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Category, error) {
	query := r.db.WithContext(ctx).Model(&entity.Category{})

	if filter.PublicOnly {
		query = query.Where("is_active = ? AND is_visible = ?", true, true)
	} else if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}
	if filter.RootsOnly {
		query = query.Where("parent_id IS NULL")
	} else if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Homepage {
		query = query.Where("show_on_home = ?", true)
	}

	var categories []*entity.Category
	if err := query.Order("level ASC, display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindChildren(ctx context.Context, parentID *uuid.UUID, activeOnly bool) ([]*entity.Category, error) {
	query := whereParent(r.db.WithContext(ctx).Model(&entity.Category{}), parentID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var categories []*entity.Category
	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindSiblings(ctx context.Context, parentID *uuid.UUID, excludeID uuid.UUID) ([]*entity.Category, error) {
	query := whereParent(r.db.WithContext(ctx).Model(&entity.Category{}), parentID).
		Where("id <> ?", excludeID)

	var categories []*entity.Category
	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendants matches the materialized path prefix. Ordering by path
// guarantees parents come before their children.
func (r *categoryRepository) FindDescendants(ctx context.Context, path string) ([]*entity.Category, error) {
	var categories []*entity.Category
	if err := r.db.WithContext(ctx).
		Where("path LIKE ?", path+"/%").
		Order("path ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *categoryRepository) CountSiblings(ctx context.Context, parentID *uuid.UUID) (int64, error) {
	var count int64
	if err := whereParent(r.db.WithContext(ctx).Model(&entity.Category{}), parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *categoryRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Category, error) {
	pattern := "%" + query + "%"

	var categories []*entity.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_visible = ?", true, true).
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ShiftDisplayOrders adds delta to display_order for every sibling whose
// order falls in [min, max].
func (r *categoryRepository) ShiftDisplayOrders(ctx context.Context, parentID *uuid.UUID, min, max, delta int) error {
	return whereParent(r.db.WithContext(ctx).Model(&entity.Category{}), parentID).
		Where("display_order >= ? AND display_order <= ?", min, max).
		UpdateColumn("display_order", gorm.Expr("display_order + ?", delta)).Error
}

func (r *categoryRepository) SetDisplayOrder(ctx context.Context, id uuid.UUID, order int) error {
	return r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", id).
		UpdateColumn("display_order", order).Error
}

// RewritePathPrefix swaps oldPath for newPath on every descendant and shifts
// their levels by the depth delta of the move.
func (r *categoryRepository) RewritePathPrefix(ctx context.Context, oldPath, newPath string, levelDelta int) error {
	return r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("path LIKE ?", oldPath+"/%").
		UpdateColumns(map[string]interface{}{
			"path":  gorm.Expr("? || substr(path, ?)", newPath, len(oldPath)+1),
			"level": gorm.Expr("level + ?", levelDelta),
		}).Error
}

func (r *categoryRepository) SetProductCount(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", id).
		UpdateColumn("product_count", count).Error
}

func (r *categoryRepository) Transaction(ctx context.Context, fn func(repo CategoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&categoryRepository{db: tx})
	})
}

func whereParent(query *gorm.DB, parentID *uuid.UUID) *gorm.DB {
	if parentID == nil {
		return query.Where("parent_id IS NULL")
	}
	return query.Where("parent_id = ?", *parentID)
}
