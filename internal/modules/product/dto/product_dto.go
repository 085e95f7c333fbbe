package dto

import (
	"time"

	"anadara.com/exportmarket/internal/entity"
	commonDto "anadara.com/exportmarket/pkg/dto"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=10000"`
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	MinOrderQty int     `json:"min_order_qty" binding:"omitempty,min=1"`
	Status      string  `json:"status" binding:"omitempty,oneof=draft active archived"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=10000"`
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	MinOrderQty *int     `json:"min_order_qty" binding:"omitempty,min=1"`
	Status      *string  `json:"status" binding:"omitempty,oneof=draft active archived"`
	IsActive    *bool    `json:"is_active"`
}

type ListProductsQuery struct {
	CategoryID string   `form:"category_id" binding:"omitempty,uuid"`
	Exporter   string   `form:"exporter" binding:"omitempty,uuid"`
	Search     string   `form:"search"`
	MinPrice   *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Page       int      `form:"page,default=1" binding:"min=1"`
	Limit      int      `form:"limit,default=20" binding:"min=1,max=50"`
}

type ExporterResponse struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CompanyName *string   `json:"company_name,omitempty"`
	Country     *string   `json:"country,omitempty"`
}

type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Path string    `json:"path"`
}

type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Category    *CategorySummary  `json:"category,omitempty"`
	Exporter    *ExporterResponse `json:"exporter,omitempty"`
	Price       float64           `json:"price"`
	Currency    string            `json:"currency"`
	MinOrderQty int               `json:"min_order_qty"`
	Status      string            `json:"status"`
	IsActive    bool              `json:"is_active"`
	Views       int               `json:"views"`
	CreatedAt   time.Time         `json:"created_at"`
}

type PaginatedProductsResponse struct {
	Category *CategorySummary         `json:"category,omitempty"`
	Products []ProductResponse        `json:"products"`
	Meta     commonDto.PaginationMeta `json:"pagination"`
}

func ToProductResponse(p *entity.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		MinOrderQty: p.MinOrderQty,
		Status:      p.Status,
		IsActive:    p.IsActive,
		Views:       p.Views,
		CreatedAt:   p.CreatedAt,
	}
	if p.Category != nil {
		resp.Category = &CategorySummary{
			ID:   p.Category.ID,
			Name: p.Category.Name,
			Slug: p.Category.Slug,
			Path: p.Category.Path,
		}
	}
	if p.Exporter != nil {
		resp.Exporter = &ExporterResponse{
			ID:          p.Exporter.ID,
			FirstName:   p.Exporter.FirstName,
			LastName:    p.Exporter.LastName,
			CompanyName: p.Exporter.CompanyName,
			Country:     p.Exporter.Country,
		}
	}
	return resp
}

func ToProductResponses(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}
