package api

import (
	"errors"
	"net/http"
	"time"

	"BB_donate_backend/internal/middleware"
	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	us service.UserServiceI
	ps service.PromoCodeServiceI
	bs service.BalanceServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, us service.UserServiceI, ps service.PromoCodeServiceI,
	bs service.BalanceServiceI, a *auth.TelegramAuth, authz *middleware.Authorization) {
	r := &adminRoutes{us: us, ps: ps, bs: bs}
	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware())
	h.Use(authz.AdminOnly())
	{
		h.GET("/dashboard", r.GetDashboard)
		h.POST("/promocodes", r.CreatePromoCode)
		h.POST("/balance/adjust", r.AdjustBalance)
	}
}

func (r *adminRoutes) GetDashboard(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.us.GetDashboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get dashboard stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":         stats.Users,
		"donations":     stats.Donations,
		"total_donated": stats.TotalDonated,
		"active_promos": stats.ActivePromos,
	})
}

type CreatePromoCodeRequest struct {
	Code      string    `json:"code" binding:"required"`
	Reward    int64     `json:"reward" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
	MaxUses   int       `json:"max_uses" binding:"required"`
}

func (r *adminRoutes) CreatePromoCode(c *gin.Context) {
	log := logger.Logger()

	var req CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	promo := &model.PromoCode{
		Code:      req.Code,
		Reward:    req.Reward,
		ExpiresAt: req.ExpiresAt,
		MaxUses:   req.MaxUses,
	}

	err := r.ps.Create(c.Request.Context(), promo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "reward and max_uses must be positive"})
		case errors.Is(err, service.ErrPromoCodeExists):
			c.JSON(http.StatusConflict, gin.H{"error": "promo code already exists"})
		default:
			log.Error("failed to create promo code", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create promo code"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": promo.Code})
}

type AdjustBalanceRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Amount     int64 `json:"amount" binding:"required"`
}

// AdjustBalance credits or debits a user by the signed amount.
func (r *adminRoutes) AdjustBalance(c *gin.Context) {
	log := logger.Logger()

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var (
		balance int64
		err     error
	)
	if req.Amount > 0 {
		balance, err = r.bs.Credit(c.Request.Context(), req.TelegramID, req.Amount, model.EntryAdjustment)
	} else {
		balance, err = r.bs.Debit(c.Request.Context(), req.TelegramID, -req.Amount, model.EntryAdjustment)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient funds"})
		default:
			log.Error("failed to adjust balance", zap.Error(err),
				zap.Int64("telegram_id", req.TelegramID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to adjust balance"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
