package api

import (
	"context"
	"net/http"

	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CardStore is the read side of the card store used by the handlers.
type CardStore interface {
	FindCardByID(ctx context.Context, cardID string) (*models.Card, error)
	FindCardsByBoard(ctx context.Context, boardID string) ([]models.Card, error)
	FindAllCards(ctx context.Context) ([]models.Card, error)
	HoursByUser(ctx context.Context, boardID string) ([]database.UserHours, error)
}

type Handler struct {
	Store CardStore
}

// Register mounts the reporting routes under /api.
func (h *Handler) Register(router *gin.Engine) {
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", h.HealthCheckHandler)
		apiGroup.GET("/cards", h.ListCardsHandler)
		apiGroup.GET("/cards/:cardID", h.GetCardHandler)
		apiGroup.GET("/reports/hours", h.HoursReportHandler)
	}
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCardsHandler returns every stored card, or those of ?board=.
func (h *Handler) ListCardsHandler(c *gin.Context) {
	var (
		cards []models.Card
		err   error
	)
	if boardID := c.Query("board"); boardID != "" {
		cards, err = h.Store.FindCardsByBoard(c.Request.Context(), boardID)
	} else {
		cards, err = h.Store.FindAllCards(c.Request.Context())
	}
	if err != nil {
		zap.L().Error("Error listing cards", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cards"})
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handler) GetCardHandler(c *gin.Context) {
	cardID := c.Param("cardID")
	card, err := h.Store.FindCardByID(c.Request.Context(), cardID)
	if err != nil {
		zap.L().Error("Error loading card", zap.String("cardID", cardID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// HoursReportHandler returns logged hours and completion counts per user.
func (h *Handler) HoursReportHandler(c *gin.Context) {
	report, err := h.Store.HoursByUser(c.Request.Context(), c.Query("board"))
	if err != nil {
		zap.L().Error("Error building hours report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
