package api

import (
	"net/http"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type balanceRoutes struct {
	bs service.BalanceServiceI
	a  *auth.TelegramAuth
}

func NewBalanceRoutes(handler *gin.RouterGroup, bs service.BalanceServiceI, a *auth.TelegramAuth) {
	r := &balanceRoutes{bs: bs, a: a}
	h := handler.Group("/balance")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/", r.GetBalance)
		h.GET("/history", r.GetHistory)
	}
}

func (r *balanceRoutes) GetBalance(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	balance, err := r.bs.Balance(c.Request.Context(), telegramUser.ID)
	if err != nil {
		log.Error("failed to get balance", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func ledgerEntryResponse(e *model.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		Amount:    e.Amount,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func (r *balanceRoutes) GetHistory(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	entries, err := r.bs.History(c.Request.Context(), telegramUser.ID)
	if err != nil {
		log.Error("failed to get ledger history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get ledger history"})
		return
	}

	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ledgerEntryResponse(e)
	}

	c.JSON(http.StatusOK, out)
}
