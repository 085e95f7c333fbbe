package handler

import (
	"net/http"

	"anadara.com/exportmarket/internal/modules/category/dto"
	category "anadara.com/exportmarket/internal/modules/category/service"
	product "anadara.com/exportmarket/internal/modules/product/service"
	"anadara.com/exportmarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryHandler struct {
	service  category.CategoryService
	products product.ProductService
}

func NewCategoryHandler(service category.CategoryService, products product.ProductService) *CategoryHandler {
	return &CategoryHandler{service: service, products: products}
}

// ListCategories serves the flat list plus the tree, featured and homepage
// projections, selected by query flags.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var query dto.ListCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	if query.Tree {
		tree, err := h.service.BuildTree(c.Request.Context(), nil)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": tree, "total": len(tree)})
		return
	}

	categories, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": dto.ToCategoryResponses(categories),
		"total":      len(categories),
	})
}

// GetCategory fetches one category by ID or slug together with its
// ancestors, children and siblings.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	detail, err := h.service.GetByIdentifier(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "category created successfully",
		"category": dto.ToCategoryResponse(created),
	})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "category updated successfully",
		"category": dto.ToCategoryResponse(updated),
	})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted successfully"})
}

func (h *CategoryHandler) SearchCategories(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	term := c.Param("query")
	results, err := h.service.Search(c.Request.Context(), term, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": dto.ToCategoryResponses(results),
		"total":      len(results),
		"query":      term,
	})
}

func (h *CategoryHandler) ReorderCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	moved, err := h.service.Reorder(c.Request.Context(), id, *req.NewOrder)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "category reordered successfully",
		"category": gin.H{
			"id":            moved.ID,
			"name":          moved.Name,
			"display_order": moved.DisplayOrder,
		},
	})
}

func (h *CategoryHandler) ToggleCategoryStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	toggled, err := h.service.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := "deactivated"
	if toggled.IsActive {
		status = "activated"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "category " + status + " successfully",
		"category": gin.H{
			"id":        toggled.ID,
			"name":      toggled.Name,
			"is_active": toggled.IsActive,
		},
	})
}

// GetCategoryProducts lists products in the category, optionally including
// its whole descendant subtree.
func (h *CategoryHandler) GetCategoryProducts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var query dto.CategoryProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	listing, err := h.products.ListByCategory(c.Request.Context(), id, query.IncludeDescendants, query.Page, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
