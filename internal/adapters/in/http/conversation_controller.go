package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/in"
)

type ConversationController struct {
	conversation in.ConversationUseCase
	availability in.AvailabilityUseCase
	cfg          *config.Config
}

func NewConversationController(
	conversation in.ConversationUseCase,
	availability in.AvailabilityUseCase,
	cfg *config.Config,
) *ConversationController {
	return &ConversationController{
		conversation: conversation,
		availability: availability,
		cfg:          cfg,
	}
}

func (c *ConversationController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.POST("/messages", c.handleMessage)
		api.GET("/slots/:date", c.getDaySlots)
	}
}

type HandleMessageRequest struct {
	UserID string `json:"userId" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (c *ConversationController) handleMessage(ctx *gin.Context) {
	var req HandleMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replies := c.conversation.HandleMessage(ctx.Request.Context(), req.UserID, req.Text)

	ctx.JSON(http.StatusOK, gin.H{
		"userId":  req.UserID,
		"replies": replies,
	})
}

func (c *ConversationController) getDaySlots(ctx *gin.Context) {
	day, err := domain.ParseISODay(ctx.Param("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	slots := c.availability.EnumerateSlots(ctx.Request.Context(), day)

	ctx.JSON(http.StatusOK, gin.H{
		"date":       day,
		"workingDay": c.availability.IsWorkingDay(day),
		"slots":      slots,
	})
}

func (c *ConversationController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
