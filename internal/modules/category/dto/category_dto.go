package dto

import (
	"time"

	"anadara.com/exportmarket/internal/entity"
	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Description  string  `json:"description" binding:"max=1000"`
	ImageURL     *string `json:"image_url" binding:"omitempty,url"`
	ParentID     *string `json:"parent_id" binding:"omitempty,uuid"`
	DisplayOrder *int    `json:"display_order" binding:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active"`
	IsVisible    *bool   `json:"is_visible"`
	IsFeatured   *bool   `json:"is_featured"`
	ShowOnHome   *bool   `json:"show_on_homepage"`
}

// UpdateCategoryRequest uses pointers so absent fields stay untouched.
// ParentID accepts a UUID, or the literal "null" to move the category to the
// root level.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url"`
	ParentID    *string `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
	IsVisible   *bool   `json:"is_visible"`
	IsFeatured  *bool   `json:"is_featured"`
	ShowOnHome  *bool   `json:"show_on_homepage"`
}

type ReorderRequest struct {
	NewOrder *int `json:"newOrder" binding:"required,gte=0"`
}

type ListCategoriesQuery struct {
	Tree     bool   `form:"tree"`
	Featured bool   `form:"featured"`
	Homepage bool   `form:"homepage"`
	Level    *int   `form:"level" binding:"omitempty,gte=0"`
	Parent   string `form:"parent"`
}

type SearchQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=50"`
}

type CategoryProductsQuery struct {
	Page               int  `form:"page,default=1" binding:"min=1"`
	Limit              int  `form:"limit,default=20" binding:"min=1,max=50"`
	IncludeDescendants bool `form:"includeDescendants"`
}

type CategoryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Level        int        `json:"level"`
	Path         string     `json:"path"`
	DisplayOrder int        `json:"display_order"`
	IsActive     bool       `json:"is_active"`
	IsVisible    bool       `json:"is_visible"`
	IsFeatured   bool       `json:"is_featured"`
	ShowOnHome   bool       `json:"show_on_homepage"`
	ProductCount int        `json:"product_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TreeNode is the nested projection produced by the tree endpoint; it is
// assembled per request and never persisted.
type TreeNode struct {
	CategoryResponse
	Children []*TreeNode `json:"children"`
}

// BreadcrumbEntry is one hop of a category's ancestry, root first.
type BreadcrumbEntry struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Path string `json:"path"`
}

type CategoryDetailResponse struct {
	Category   CategoryResponse   `json:"category"`
	Breadcrumb []BreadcrumbEntry  `json:"breadcrumb"`
	Ancestors  []CategoryResponse `json:"ancestors"`
	Children   []CategoryResponse `json:"children"`
	Siblings   []CategoryResponse `json:"siblings"`
}

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		ParentID:     c.ParentID,
		Level:        c.Level,
		Path:         c.Path,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
		IsVisible:    c.IsVisible,
		IsFeatured:   c.IsFeatured,
		ShowOnHome:   c.ShowOnHome,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
	}
}

func ToCategoryResponses(categories []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, ToCategoryResponse(c))
	}
	return out
}
