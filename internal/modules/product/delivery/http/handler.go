package handler

import (
	"net/http"

	"anadara.com/exportmarket/internal/middleware"
	"anadara.com/exportmarket/internal/modules/product/dto"
	product "anadara.com/exportmarket/internal/modules/product/service"
	view "anadara.com/exportmarket/internal/modules/view/service"
	"anadara.com/exportmarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	service product.ProductService
	views   view.ViewService
}

func NewProductHandler(service product.ProductService, views view.ViewService) *ProductHandler {
	return &ProductHandler{service: service, views: views}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query dto.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	listing, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetProduct resolves by ID or slug. The route carries OptionalAuth so an
// exporter can see their own unpublished product.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	viewer := middleware.Principal(c)

	found, err := h.service.GetByIdentifier(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": dto.ToProductResponse(found)})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	exporter := middleware.Principal(c)
	if exporter == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), exporter, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "product created successfully",
		"product": dto.ToProductResponse(created),
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req dto.UpdateProductRequest
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
		"message": "product updated successfully",
		"product": dto.ToProductResponse(updated),
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

// RecordView counts one product view; deduplicated per viewer in redis and
// flushed to the database by the sync worker.
func (h *ProductHandler) RecordView(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	viewerKey := c.ClientIP()
	if viewer := middleware.Principal(c); viewer != nil {
		viewerKey = viewer.ID.String()
	}

	if err := h.views.RecordView(c.Request.Context(), id, viewerKey); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "view recorded"})
}

// OwnerExtractor adapts product ownership lookups for the owner-or-admin
// gate.
func OwnerExtractor(service product.ProductService) middleware.OwnerExtractor {
	return func(c *gin.Context) (uuid.UUID, error) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return uuid.Nil, err
		}
		return service.GetOwnerID(c.Request.Context(), id)
	}
}
