package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/forms"
	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/store"
	"go.uber.org/zap"
)

const deleteOrderPrompt = "Tem certeza que deseja apagar este pedido?"

// OrderController handles the order form and the board's order mutations
type OrderController struct {
	orders   *store.OrderStore
	dentists *store.DentistStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderController creates the order handlers
func NewOrderController(orders *store.OrderStore, dentists *store.DentistStore, logger *zap.Logger) *OrderController {
	RegisterValidators()
	return &OrderController{orders: orders, dentists: dentists, logger: logger, now: time.Now}
}

// ListOrders handles GET /api/v1/orders - every order by delivery date
func (h *OrderController) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateOrder handles POST /api/v1/orders. The response carries a blank
// form so the client stays in create mode for the next entry.
func (h *OrderController) CreateOrder(c *gin.Context) {
	var form forms.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := form.Build(nil, h.now())
	if err != nil {
		respondFormError(c, err)
		return
	}

	if err := h.orders.Create(c.Request.Context(), &order); err != nil {
		respondStoreError(c, h.logger, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"data":      order,
		"next_form": forms.NewOrderForm(),
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - overwrites everything but the
// creation timestamp and sends the client back to create mode.
func (h *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var form forms.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}

	existing, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	order, err := form.Build(existing, h.now())
	if err != nil {
		respondFormError(c, err)
		return
	}

	if err := h.orders.Update(c.Request.Context(), &order); err != nil {
		respondStoreError(c, h.logger, err, "Failed to update order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      order,
		"editing":   false,
		"next_form": forms.NewOrderForm(),
	})
}

// MarkReady handles PATCH /api/v1/orders/:id/ready - status-only change
func (h *OrderController) MarkReady(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.MarkReady(c.Request.Context(), id); err != nil {
		respondStoreError(c, h.logger, err, "Failed to mark order ready")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":     id,
			"status": models.StatusReady,
		},
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id?confirm=true
func (h *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !requireConfirmation(c, deleteOrderPrompt) {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, h.logger, err, "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}

// NewOrderForm handles GET /api/v1/forms/orders - a blank form with the
// dentist options and the service catalog.
func (h *OrderController) NewOrderForm(c *gin.Context) {
	names, err := h.dentists.Names(c.Request.Context())
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to load dentists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"form":     forms.NewOrderForm(),
			"dentists": names,
			"catalog":  serviceOptions(),
		},
	})
}

// EditOrderForm handles GET /api/v1/orders/:id/form - the form state for editing one order
func (h *OrderController) EditOrderForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve order")
		return
	}
	names, err := h.dentists.Names(c.Request.Context())
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to load dentists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"form":     forms.EditOrderForm(*order),
			"dentists": names,
			"catalog":  serviceOptions(),
		},
	})
}

// SelectServiceRequest carries the current form and the chosen service option
type SelectServiceRequest struct {
	Form   forms.OrderForm `json:"form"`
	Option string          `json:"option"`
}

// SelectService handles POST /api/v1/forms/orders/service - applies a
// service select change, switching manual entry on for OUTRO.
func (h *OrderController) SelectService(c *gin.Context) {
	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	req.Form.SelectService(req.Option)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    req.Form,
	})
}

func serviceOptions() []string {
	options := make([]string, 0, len(models.ServiceCatalog)+1)
	options = append(options, models.ServiceCatalog...)
	return append(options, models.OtherService)
}
