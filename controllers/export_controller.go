package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/board"
	"github.com/labmanager/labmanager-api/services"
	"github.com/labmanager/labmanager-api/store"
	"go.uber.org/zap"
)

// ExportController produces labels, calendar links and spreadsheets
type ExportController struct {
	orders *store.OrderStore
	labels *services.LabelService
	board  *board.Board
	logger *zap.Logger
}

// NewExportController creates the export handlers
func NewExportController(orders *store.OrderStore, labels *services.LabelService, b *board.Board, logger *zap.Logger) *ExportController {
	return &ExportController{orders: orders, labels: labels, board: b, logger: logger}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
}

// GetLabel handles GET /api/v1/orders/:id/label - the printable PDF label
func (h *ExportController) GetLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	body, err := h.labels.Render(*order)
	if err != nil {
		h.logger.Error("Failed to render label", zap.Uint("order_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "LABEL_ERROR", "Failed to render label")
		return
	}

	attachment(c, h.labels.FileName(*order))
	c.Data(http.StatusOK, "application/pdf", body)
}

// ArchiveLabel handles POST /api/v1/orders/:id/label/archive - stores the
// label in S3 and returns a temporary link to it.
func (h *ExportController) ArchiveLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	key, link, err := h.labels.Archive(c.Request.Context(), *order)
	if errors.Is(err, services.ErrArchiveDisabled) {
		respondError(c, http.StatusServiceUnavailable, "ARCHIVE_DISABLED", "Label archive is not configured")
		return
	}
	if err != nil {
		h.logger.Error("Failed to archive label", zap.Uint("order_id", id), zap.Error(err))
		respondError(c, http.StatusBadGateway, "STORAGE_ERROR", "Failed to archive label")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": link,
		},
	})
}

// GetCalendarLink handles GET /api/v1/orders/:id/calendar. With
// ?redirect=true the client is sent straight to the calendar.
func (h *ExportController) GetCalendarLink(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	link, err := services.CalendarLink(*order)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "NO_DELIVERY_DATE", "Order has no valid delivery date")
		return
	}

	if redirect, _ := strconv.ParseBool(c.Query("redirect")); redirect {
		c.Redirect(http.StatusFound, link)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"url": link},
	})
}

// ExportOrders handles GET /api/v1/exports/orders.xlsx?q=&mode= - the board as a spreadsheet
func (h *ExportController) ExportOrders(c *gin.Context) {
	view, ok := parseView(c, h.board)
	if !ok {
		return
	}

	attachment(c, fmt.Sprintf("pedidos_%s_%s.xlsx", view.Mode, time.Now().Format("2006-01-02")))
	c.Header("Content-Type", services.XLSXContentType)
	c.Status(http.StatusOK)
	if err := services.WriteOrdersXLSX(c.Writer, view); err != nil {
		h.logger.Error("Failed to write spreadsheet", zap.Error(err))
		_ = c.Error(err)
	}
}
