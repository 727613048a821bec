package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/request"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
)

// SalesHandler handles the sales history and the single-product sales sheet.
type SalesHandler struct {
	salesService *service.SalesService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(salesService *service.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// List handles listing sale headers
// @Summary List sales
// @Tags sales
// @Security BearerAuth
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.APIResponse
// @Router /sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var req request.SaleLookupRequest
	_ = c.ShouldBindQuery(&req)
	response.OK(c, "Sales retrieved successfully", h.salesService.List(c.Request.Context(), req.Refresh))
}

// Get handles getting one sale with its lines
func (h *SalesHandler) Get(c *gin.Context) {
	var req request.SaleLookupRequest
	_ = c.ShouldBindQuery(&req)

	sale, err := h.salesService.Get(c.Request.Context(), c.Param("order"), req.Refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Legacy returns the rows of the single-product sales sheet.
func (h *SalesHandler) Legacy(c *gin.Context) {
	response.OK(c, "Sales retrieved successfully", h.salesService.Legacy(c.Request.Context()))
}

// RecordLegacy writes a single-product sale.
func (h *SalesHandler) RecordLegacy(c *gin.Context) {
	var req request.LegacySaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	sale := req.ToEntity()
	if err := h.salesService.RecordLegacySale(c.Request.Context(), sale); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale recorded successfully", sale)
}
