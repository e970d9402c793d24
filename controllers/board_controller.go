package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/board"
)

// BoardController renders the live order board
type BoardController struct {
	board *board.Board
}

// NewBoardController creates the board handler
func NewBoardController(b *board.Board) *BoardController {
	return &BoardController{board: b}
}

// parseView reads the q and mode query parameters and renders the board
func parseView(c *gin.Context, b *board.Board) (board.View, bool) {
	mode, ok := board.ParseMode(c.Query("mode"))
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MODE", "Mode must be active or completed")
		return board.View{}, false
	}
	return b.View(c.Query("q"), mode), true
}

// GetBoard handles GET /api/v1/board?q=&mode= - totals over every order
// plus the rows matching the search and mode.
func (h *BoardController) GetBoard(c *gin.Context) {
	view, ok := parseView(c, h.board)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}
