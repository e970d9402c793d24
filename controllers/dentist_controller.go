package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/forms"
	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/store"
	"go.uber.org/zap"
)

const (
	deleteDentistPrompt = "Tem certeza? Isso remove o cadastro do dentista."
	noAddress           = "Endereço não informado"
)

// dentistRow is a directory entry as the list renders it
type dentistRow struct {
	models.Dentist
	AddressDisplay string `json:"address_display"`
}

func dentistRows(dentists []models.Dentist) []dentistRow {
	rows := make([]dentistRow, 0, len(dentists))
	for _, d := range dentists {
		display := strings.TrimSpace(d.Address)
		if display == "" {
			display = noAddress
		}
		rows = append(rows, dentistRow{Dentist: d, AddressDisplay: display})
	}
	return rows
}

// DentistController handles the dentist directory
type DentistController struct {
	dentists *store.DentistStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewDentistController creates the directory handlers
func NewDentistController(dentists *store.DentistStore, logger *zap.Logger) *DentistController {
	return &DentistController{dentists: dentists, logger: logger, now: time.Now}
}

// ListDentists handles GET /api/v1/dentists - the directory ordered by name
func (h *DentistController) ListDentists(c *gin.Context) {
	dentists, err := h.dentists.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve dentists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dentistRows(dentists),
		"count":   len(dentists),
	})
}

// GetDentist handles GET /api/v1/dentists/:id
func (h *DentistController) GetDentist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dentist, err := h.dentists.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve dentist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dentist,
	})
}

// NewDentistForm handles GET /api/v1/forms/dentists - a blank create form
func (h *DentistController) NewDentistForm(c *gin.Context) {
	form := forms.DentistForm{}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"form": form,
			"mode": form.Mode(),
		},
	})
}

// EditDentistForm handles GET /api/v1/dentists/:id/form - loads a record into the form
func (h *DentistController) EditDentistForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dentist, err := h.dentists.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve dentist")
		return
	}

	form := forms.EditDentistForm(*dentist)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"form": form,
			"mode": form.Mode(),
		},
	})
}

// CreateDentist handles POST /api/v1/dentists
func (h *DentistController) CreateDentist(c *gin.Context) {
	var form forms.DentistForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}
	form.ID = 0

	dentist, err := form.Build(nil, h.now())
	if err != nil {
		respondFormError(c, err)
		return
	}

	if err := h.dentists.Create(c.Request.Context(), &dentist); err != nil {
		respondStoreError(c, h.logger, err, "Failed to create dentist")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"data":      dentist,
		"next_form": forms.DentistForm{},
	})
}

// UpdateDentist handles PUT /api/v1/dentists/:id - only the update timestamp moves
func (h *DentistController) UpdateDentist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var form forms.DentistForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}
	form.ID = id

	existing, err := h.dentists.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, h.logger, err, "Failed to retrieve dentist")
		return
	}

	dentist, err := form.Build(existing, h.now())
	if err != nil {
		respondFormError(c, err)
		return
	}

	if err := h.dentists.Update(c.Request.Context(), &dentist); err != nil {
		respondStoreError(c, h.logger, err, "Failed to update dentist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      dentist,
		"next_form": forms.DentistForm{},
	})
}

// DeleteDentist handles DELETE /api/v1/dentists/:id?confirm=true. Orders
// that name the dentist are left as they are.
func (h *DentistController) DeleteDentist(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !requireConfirmation(c, deleteDentistPrompt) {
		return
	}

	if err := h.dentists.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, h.logger, err, "Failed to delete dentist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}

// MaskPhone handles GET /api/v1/forms/dentists/phone-mask?phone= - the input mask applied while typing
func (h *DentistController) MaskPhone(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"phone": forms.MaskPhone(c.Query("phone")),
		},
	})
}
