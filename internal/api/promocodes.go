package api

import (
	"errors"
	"net/http"
	"time"

	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type promoCodeRoutes struct {
	ps service.PromoCodeServiceI
	a  *auth.TelegramAuth
}

func NewPromoCodeRoutes(handler *gin.RouterGroup, ps service.PromoCodeServiceI, a *auth.TelegramAuth) {
	r := &promoCodeRoutes{ps: ps, a: a}
	h := handler.Group("/promocodes")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/", r.ListActive)
		h.POST("/redeem", r.Redeem)
	}
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

type RedeemResponse struct {
	Code    string `json:"code"`
	Reward  int64  `json:"reward"`
	Balance int64  `json:"balance"`
}

func (r *promoCodeRoutes) Redeem(c *gin.Context) {
	log := logger.Logger()

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	result, err := r.ps.Redeem(c.Request.Context(), telegramUser.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
		case errors.Is(err, service.ErrPromoCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "promo code expired"})
		case errors.Is(err, service.ErrPromoCodeLimitReached):
			c.JSON(http.StatusConflict, gin.H{"error": "promo code usage limit reached"})
		case errors.Is(err, service.ErrPromoCodeAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "promo code already activated"})
		default:
			log.Error("failed to redeem promo code", zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID), zap.String("code", req.Code))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to redeem promo code"})
		}
		return
	}

	c.JSON(http.StatusOK, RedeemResponse{
		Code:    result.Code,
		Reward:  result.Reward,
		Balance: result.Balance,
	})
}

type PromoCodeResponse struct {
	Code      string    `json:"code"`
	Reward    int64     `json:"reward"`
	ExpiresAt time.Time `json:"expires_at"`
	UsesLeft  int       `json:"uses_left"`
}

func (r *promoCodeRoutes) ListActive(c *gin.Context) {
	log := logger.Logger()

	promos, err := r.ps.ListActive(c.Request.Context())
	if err != nil {
		log.Error("failed to list promo codes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list promo codes"})
		return
	}

	out := make([]PromoCodeResponse, len(promos))
	for i, p := range promos {
		out[i] = PromoCodeResponse{
			Code:      p.Code,
			Reward:    p.Reward,
			ExpiresAt: p.ExpiresAt,
			UsesLeft:  p.MaxUses - p.UsedCount,
		}
	}

	c.JSON(http.StatusOK, out)
}
