package api

import (
	"net/http"

	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type referralRoutes struct {
	rs service.ReferralServiceI
	a  *auth.TelegramAuth
}

func NewReferralRoutes(handler *gin.RouterGroup, rs service.ReferralServiceI, a *auth.TelegramAuth) {
	r := &referralRoutes{rs: rs, a: a}
	h := handler.Group("/referrals")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/stats", r.GetStats)
		h.POST("/attribute", r.Attribute)
	}
}

func (r *referralRoutes) GetStats(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	stats, err := r.rs.StatsFor(c.Request.Context(), telegramUser.ID)
	if err != nil {
		log.Error("failed to get referral stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today":  stats.Today,
		"week":   stats.Week,
		"month":  stats.Month,
		"total":  stats.Total,
		"earned": stats.Earned,
	})
}

type AttributeRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

func (r *referralRoutes) Attribute(c *gin.Context) {
	log := logger.Logger()

	var req AttributeRequest
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

	ref, err := r.rs.Attribute(c.Request.Context(), telegramUser.ID, req.ReferralCode)
	if err != nil {
		log.Error("failed to attribute referral", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attribute referral"})
		return
	}

	if ref == nil {
		c.JSON(http.StatusOK, gin.H{"attributed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attributed":  true,
		"referrer_id": ref.ReferrerID,
	})
}
