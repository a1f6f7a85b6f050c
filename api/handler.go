package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sales_explorer/internal/sales"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusClientClosedRequest is the non-standard status logged when the client
// disconnects before the response is ready.
const statusClientClosedRequest = 499

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
	now          func() time.Time
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
		now:          time.Now,
	}
}

// handleListSales handles the GET /sales endpoint.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	page, ok := h.listPage(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// handleGetSale handles the GET /sales/:id endpoint.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleStats handles the GET /sales/stats endpoint. The figures cover the
// same page GET /sales returns for the parameters.
func (h *salesHandler) handleStats(ctx *gin.Context) {
	page, ok := h.listPage(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, sales.ComputeStats(page.Data))
}

// handleExport handles the GET /sales/export endpoint.
func (h *salesHandler) handleExport(ctx *gin.Context) {
	page, ok := h.listPage(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := sales.WriteCSV(&buf, page.Data); err != nil {
		h.logger.Error("failed to write csv export", zap.Error(err))
		h.writeError(ctx, err)
		return
	}

	filename := sales.ExportFilename(h.now())
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// handleBulkDelete handles the DELETE /sales/bulk-delete endpoint.
func (h *salesHandler) handleBulkDelete(ctx *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	n, err := h.salesService.BulkDelete(ctx.Request.Context(), req.IDs)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": n})
}

// listPage builds the query from the request and runs it, writing the error
// response itself when that fails.
func (h *salesHandler) listPage(ctx *gin.Context) (*sales.Page, bool) {
	q, err := sales.BuildQuery(ctx.Request.URL.Query())
	if err != nil {
		h.writeError(ctx, err)
		return nil, false
	}
	page, err := h.salesService.List(ctx.Request.Context(), q)
	if err != nil {
		h.writeError(ctx, err)
		return nil, false
	}
	return page, true
}

// writeError maps service errors to status codes. Store failure details are
// logged by the service and never returned to the client.
func (h *salesHandler) writeError(ctx *gin.Context, err error) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, sales.ErrTimeout):
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": "store timeout"})
	case errors.Is(err, context.Canceled):
		// The client is gone; nothing useful can be written.
		ctx.AbortWithStatus(statusClientClosedRequest)
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
