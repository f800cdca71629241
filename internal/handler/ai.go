package handler

import (
	"context"
	"net/http"

	"time-tracker/internal/middleware"
	"time-tracker/internal/model"

	"github.com/gin-gonic/gin"
)

type Assistant interface {
	GetUsageInfo(ctx context.Context) model.UsageInfo
	GetCachedSummary(ctx context.Context, userID string) *model.AiSummary
	ClearCachedSummary(ctx context.Context, userID string) bool
}

type Summaries interface {
	Current(ctx context.Context, user model.UserContext) string
	Generate(ctx context.Context, user model.UserContext) model.ChatResult
}

type AIHandler struct {
	ai        Assistant
	summaries Summaries
}

func NewAIHandler(ai Assistant, summaries Summaries) *AIHandler {
	return &AIHandler{ai: ai, summaries: summaries}
}

func (h *AIHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, h.ai.GetUsageInfo(c.Request.Context()))
}

func (h *AIHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.User(c)
	resp := model.SummaryResponse{Summary: h.summaries.Current(ctx, user)}
	if userID, ok := model.UserID(user); ok && resp.Summary != "" {
		if cached := h.ai.GetCachedSummary(ctx, userID); cached != nil {
			resp.LastUpdated = &cached.LastUpdated
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateSummary asks the assistant for a fresh weekly summary. Anonymous
// callers get one for the demo data.
func (h *AIHandler) GenerateSummary(c *gin.Context) {
	res := h.summaries.Generate(c.Request.Context(), middleware.User(c))
	c.JSON(chatStatus(res.Status), res)
}

func (h *AIHandler) ClearSummary(c *gin.Context) {
	userID, _ := model.UserID(middleware.User(c))
	if !h.ai.ClearCachedSummary(c.Request.Context(), userID) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary not cleared"})
		return
	}
	c.Status(http.StatusNoContent)
}

func chatStatus(s model.ChatStatus) int {
	switch s {
	case model.ChatOK:
		return http.StatusOK
	case model.ChatRateLimited, model.ChatQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
