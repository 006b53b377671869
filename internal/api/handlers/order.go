package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventstock/eventstock/internal/core/order"
	"github.com/eventstock/eventstock/internal/export"
	"github.com/eventstock/eventstock/internal/metrics"
)

// ExportOptions configures order document rendering.
type ExportOptions struct {
	DefaultFormat string
	Images        export.ImageSource
	Logo          string
}

type OrderHandler struct {
	orders *order.Service
	export ExportOptions
}

func NewOrderHandler(orders *order.Service, opts ExportOptions) *OrderHandler {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = export.FormatXLSX
	}
	return &OrderHandler{orders: orders, export: opts}
}

func (h *OrderHandler) respond(c *gin.Context, status int, res *order.Result) {
	setPersisted(c, res.Persisted)
	c.JSON(status, res.Order)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, res)
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Update(c *gin.Context) {
	var req order.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.UpdateDetails(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, res)
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	var req order.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.AddLineItem(c.Request.Context(), c.Param("id"), req.ProductRef)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, res)
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	item, ok := intParam(c, "item")
	if !ok {
		return
	}

	res, err := h.orders.RemoveLineItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, res)
}

func (h *OrderHandler) AddTier(c *gin.Context) {
	item, ok := intParam(c, "item")
	if !ok {
		return
	}

	var req order.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.AddTier(c.Request.Context(), c.Param("id"), item, req.Tier())
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, res)
}

func (h *OrderHandler) ReplaceTier(c *gin.Context) {
	item, ok := intParam(c, "item")
	if !ok {
		return
	}
	tier, ok := intParam(c, "tier")
	if !ok {
		return
	}

	var req order.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.ReplaceTier(c.Request.Context(), c.Param("id"), item, tier, req.Tier())
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, res)
}

func (h *OrderHandler) RemoveTier(c *gin.Context) {
	item, ok := intParam(c, "item")
	if !ok {
		return
	}
	tier, ok := intParam(c, "tier")
	if !ok {
		return
	}

	res, err := h.orders.RemoveTier(c.Request.Context(), c.Param("id"), item, tier)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, res)
}

// Export renders the order as a downloadable document. The document is
// buffered so a rendering failure still gets a JSON error.
func (h *OrderHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", h.export.DefaultFormat)
	renderer, err := export.New(format, h.export.Images, h.export.Logo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.orders.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(c.Request.Context(), payload, &buf); err != nil {
		respondError(c, fmt.Errorf("render %s: %w", format, err))
		return
	}
	metrics.ExportsTotal.WithLabelValues(format).Inc()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(payload.OrderNumber, renderer)))
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
