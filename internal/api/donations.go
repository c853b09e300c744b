package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/service"
	"BB_donate_backend/pkg/auth"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type donationRoutes struct {
	ds service.DonationServiceI
	a  *auth.TelegramAuth
}

func NewDonationRoutes(handler *gin.RouterGroup, ds service.DonationServiceI, a *auth.TelegramAuth) {
	r := &donationRoutes{ds: ds, a: a}
	h := handler.Group("/donations")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/", r.CreateDonation)
		h.GET("/", r.GetDonationHistory)
		h.GET("/payment-link", r.GetPaymentLink)
	}
}

type CreateDonationRequest struct {
	Amount    int64  `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	PromoCode string `json:"promo_code"`
}

type DonationResponse struct {
	ID               string    `json:"id"`
	Amount           int64     `json:"amount"`
	Method           string    `json:"method"`
	PromoCode        string    `json:"promo_code,omitempty"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func donationResponse(d *model.Donation) DonationResponse {
	return DonationResponse{
		ID:               d.ID.String(),
		Amount:           d.Amount,
		Method:           string(d.Method),
		PromoCode:        d.PromoCode,
		Status:           string(d.Status),
		PaymentReference: d.PaymentReference,
		CreatedAt:        d.CreatedAt,
	}
}

func (r *donationRoutes) CreateDonation(c *gin.Context) {
	log := logger.Logger()

	var req CreateDonationRequest
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

	d, err := r.ds.Create(c.Request.Context(), telegramUser.ID, req.Amount,
		model.PaymentMethod(req.Method), req.PromoCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "donation amount below minimum"})
		case errors.Is(err, service.ErrUnknownPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment method"})
		case errors.Is(err, service.ErrPromoCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
		case errors.Is(err, service.ErrPromoCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "promo code expired"})
		case errors.Is(err, service.ErrPromoCodeLimitReached),
			errors.Is(err, service.ErrPromoCodeAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrPaymentTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "payment confirmation timed out"})
		case errors.Is(err, service.ErrPaymentRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment rejected"})
		default:
			log.Error("failed to create donation", zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create donation"})
		}
		return
	}

	c.JSON(http.StatusCreated, donationResponse(d))
}

func (r *donationRoutes) GetDonationHistory(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	donations, err := r.ds.History(c.Request.Context(), telegramUser.ID)
	if err != nil {
		log.Error("failed to get donation history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get donation history"})
		return
	}

	out := make([]DonationResponse, len(donations))
	for i, d := range donations {
		out[i] = donationResponse(d)
	}

	c.JSON(http.StatusOK, out)
}

func (r *donationRoutes) GetPaymentLink(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	link := r.ds.PaymentLink(telegramUser.ID, amount)
	if link == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment bot not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}
