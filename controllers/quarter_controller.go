// Package controllers file: controllers/quarter_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lineup-board/logger"
	"lineup-board/services"
	"lineup-board/store"
)

// QuarterController serves quarter creation and the board join QR code.
type QuarterController struct {
	Repo           *store.Repository
	ApplicationURL string
}

// NewQuarterController creates an instance of QuarterController.
func NewQuarterController(repo *store.Repository, applicationURL string) *QuarterController {
	return &QuarterController{Repo: repo, ApplicationURL: applicationURL}
}

type ensureQuarterRequest struct {
	Order int `json:"order" binding:"required,min=1"`
}

// EnsureQuarter creates the next quarter on demand, idempotently: asking
// for an order that already exists returns it unchanged.
func (qc *QuarterController) EnsureQuarter(c *gin.Context) {
	var req ensureQuarterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quarter, err := qc.Repo.EnsureQuarter(c.Request.Context(), clubID(c), req.Order)
	if err != nil {
		logger.Warn.Printf("EnsureQuarter: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quarter)
}

// BoardQRCode renders a QR code that opens the quarter's live board, so
// viewers at the pitch can join by scanning.
func (qc *QuarterController) BoardQRCode(c *gin.Context) {
	png, err := services.GenerateBoardQRCode(qc.ApplicationURL, clubID(c), c.Param("quarterId"), 256)
	if err != nil {
		logger.Error.Printf("BoardQRCode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
