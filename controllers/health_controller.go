package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController reports service and database health
type HealthController struct {
	db      *gorm.DB
	labName string
}

// NewHealthController creates the health handlers
func NewHealthController(db *gorm.DB, labName string) *HealthController {
	return &HealthController{db: db, labName: labName}
}

// HealthCheck handles the health check endpoint
func (h *HealthController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": h.labName + " API is running",
	})
}

// DatabaseStatus checks database connectivity and returns table information
func (h *HealthController) DatabaseStatus(c *gin.Context) {
	// Get the underlying SQL database to check connection
	sqlDB, err := h.db.DB()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance")
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	tables, err := h.db.Migrator().GetTables()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  applicationTables(tables),
	})
}

// applicationTables drops engine bookkeeping tables such as sqlite_sequence
func applicationTables(tables []string) []string {
	out := make([]string, 0, len(tables))
	for _, name := range tables {
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		out = append(out, name)
	}
	return out
}
