package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/board"
)

// Page is one entry of the navigation shell
type Page struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// ShellController serves the navigation catalogue
type ShellController struct {
	labName string
	board   *board.Board
	dentist func() int
}

// NewShellController creates the shell handler. dentistCount reports the
// size of the directory from the latest snapshot.
func NewShellController(labName string, b *board.Board, dentistCount func() int) *ShellController {
	return &ShellController{labName: labName, board: b, dentist: dentistCount}
}

// GetShell handles GET /api/v1/shell?page= - the pages with their counts
// and which one is selected. Unknown pages fall back to pedidos.
func (h *ShellController) GetShell(c *gin.Context) {
	orders, loaded := h.board.Snapshot()
	active := len(board.Filter(orders, "", board.ModeActive))
	completed := len(board.Filter(orders, "", board.ModeCompleted))

	pages := []Page{
		{Key: "pedidos", Title: "Pedidos", Count: active},
		{Key: "historico", Title: "Histórico", Count: completed},
		{Key: "dentistas", Title: "Dentistas", Count: h.dentist()},
	}

	current := pages[0]
	for _, p := range pages {
		if p.Key == c.Query("page") {
			current = p
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"lab_name": h.labName,
			"pages":    pages,
			"current":  current.Key,
			"title":    current.Title,
			"loaded":   loaded,
		},
	})
}
