package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/ai"
	"github.com/epa-labs/epa-coach/internal/coach"
)

// The completion endpoint keeps the exact wire contract of the
// prototype's serverless function, including the fallback payloads, so
// any UI built against it keeps working.

type chatCompletionReq struct {
	Message         string                 `json:"message"`
	Mode            string                 `json:"mode"`
	DocumentContext *coach.DocumentContext `json:"documentContext"`
	History         []coach.Turn           `json:"conversationHistory"`
}

func (h *Handler) CompleteChat(c *gin.Context) {
	// The credential gate comes before any request validation, so a
	// misconfigured deployment answers every request the same way.
	if err := h.Responder.CheckCredential(); err != nil {
		h.Log.Error("chat completion rejected: api key not configured")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "API key not configured",
			"fallback": coach.FallbackUnavailable,
		})
		return
	}

	var req chatCompletionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	mode := coach.ModeCoach
	if req.Mode == string(coach.ModeAdvisor) {
		mode = coach.ModeAdvisor
	}

	out, err := h.Responder.Generate(c.Request.Context(), coach.Request{
		Message:  req.Message,
		Document: req.DocumentContext,
		History:  req.History,
		Mode:     mode,
	})
	if err != nil {
		if errors.Is(err, ai.ErrMissingCredential) {
			h.Log.Error("chat completion rejected: api key not configured")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "API key not configured",
				"fallback": coach.FallbackUnavailable,
			})
			return
		}
		h.Log.Error("chat completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to get response from AI",
			"details":  err.Error(),
			"fallback": coach.FallbackError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": out})
}
