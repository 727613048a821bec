package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/request"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/pagination"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products. Without page params every match comes
// back on one page.
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	q := &service.ProductQuery{
		Search:   filter.Search,
		Category: filter.Category,
		Sort:     enum.ProductSort(filter.SortBy),
		Force:    filter.Refresh,
	}
	if filter.Page > 0 || filter.PerPage > 0 {
		q.Pagination = &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage}
	}

	result := h.productService.ListProducts(c.Request.Context(), q)
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles getting a product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// GetByBarcode looks a scanned code up.
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	product, err := h.productService.FindByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Create handles product creation
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	result, err := h.productService.CreateProduct(c.Request.Context(), req.ToInput(""))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product added successfully", result)
}

// Update handles product update
func (h *ProductHandler) Update(c *gin.Context) {
	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	result, err := h.productService.UpdateProduct(c.Request.Context(), req.ToInput(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", result)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product deleted successfully", nil)
}

// GetLowStock returns products under their reorder level.
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	var req request.LowStockRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	response.OK(c, "Low stock products retrieved", h.productService.LowStock(c.Request.Context(), req.Threshold))
}

// GetOutOfStock returns products with nothing left.
func (h *ProductHandler) GetOutOfStock(c *gin.Context) {
	response.OK(c, "Out of stock products retrieved", h.productService.OutOfStock(c.Request.Context()))
}

// Stats returns the inventory summary.
func (h *ProductHandler) Stats(c *gin.Context) {
	response.OK(c, "Inventory stats retrieved", h.productService.Stats(c.Request.Context()))
}

// Categories returns the categories in use.
func (h *ProductHandler) Categories(c *gin.Context) {
	response.OK(c, "Categories retrieved", h.productService.Categories(c.Request.Context()))
}

// Options returns the pick lists of the add-item form.
func (h *ProductHandler) Options(c *gin.Context) {
	response.OK(c, "Product options retrieved", h.productService.Options())
}

// Capacity reports the room left on the inventory sheet.
func (h *ProductHandler) Capacity(c *gin.Context) {
	response.OK(c, "Capacity checked", h.productService.Capacity(c.Request.Context()))
}

// GenerateBarcode draws an unused barcode.
func (h *ProductHandler) GenerateBarcode(c *gin.Context) {
	var req request.GenerateBarcodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	response.OK(c, "Barcode generated", gin.H{
		"barcode": h.productService.GenerateBarcode(c.Request.Context(), req.Custom),
	})
}

// CheckBarcode asks the sheet whether a barcode is taken.
func (h *ProductHandler) CheckBarcode(c *gin.Context) {
	var req request.BarcodeCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "barcode is required")
		return
	}

	exists, err := h.productService.CheckBarcode(c.Request.Context(), req.Barcode, req.ExcludeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Barcode checked", gin.H{"barcode": req.Barcode, "exists": exists})
}

// ExportCSV streams the inventory as a CSV download.
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := h.productService.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
		c.AbortWithStatus(500)
	}
}
