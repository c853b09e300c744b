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

type userRoutes struct {
	us service.UserServiceI
	rs service.ReferralServiceI
	a  *auth.TelegramAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, rs service.ReferralServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, rs: rs, a: a}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/", r.RegisterUser)
		h.GET("/me", r.GetCurrentUser)
		h.GET("/:telegram_id", r.GetUserByTelegramID)
		h.GET("/leaderboard", r.GetLeaderboard)
	}
}

type RegisterUserRequest struct {
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
}

type UserResponse struct {
	TelegramID       int64     `json:"telegram_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	ReferralCode     string    `json:"referral_code"`
	Balance          int64     `json:"balance"`
	RegistrationDate time.Time `json:"registration_date"`
}

func userResponse(u *model.User) UserResponse {
	return UserResponse{
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             string(u.Role),
		ReferralCode:     u.ReferralCode,
		Balance:          u.Balance,
		RegistrationDate: u.RegistrationDate,
	}
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
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

	u, err := r.us.Register(c.Request.Context(), telegramUser.ID, telegramUser.Username, req.Email)
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	if req.ReferralCode != "" {
		if _, err := r.rs.Attribute(c.Request.Context(), u.TelegramID, req.ReferralCode); err != nil {
			log.Error("failed to attribute referral", zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, userResponse(u))
}

func (r *userRoutes) GetCurrentUser(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), telegramUser.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (r *userRoutes) GetUserByTelegramID(c *gin.Context) {
	log := logger.Logger()

	id, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided telegram_id"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	donators, err := r.us.GetTopDonators(c.Request.Context())
	if err != nil {
		log.Error("failed to get top donators", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	var response []gin.H
	for _, d := range donators {
		response = append(response, gin.H{
			"telegram_id": d.TelegramID,
			"username":    d.Username,
			"donated":     d.Donated,
		})
	}

	c.JSON(http.StatusOK, response)
}
