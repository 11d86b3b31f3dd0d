package handler

import (
	"net/http"

	"heartlink/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

type swipeRequest struct {
	TargetUsername string `json:"target_username"`
	Direction      string `json:"direction"`
}

// RemainingSwipes reports the caller's quota for the trailing window.
func (h *Handler) RemainingSwipes(c *gin.Context) {
	userID, err := h.Dir.ResolveUsername(c.Request.Context(), callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	quota, err := h.Swipes.RemainingQuota(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"remaining_swipes": quota.Remaining,
		"total_limit":      quota.Limit,
	})
}

// ProcessSwipe records a swipe and reports whether it completed a match.
func (h *Handler) ProcessSwipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetUsername == "" || req.Direction == "" {
		h.writeError(c, apperr.Validationf("target_username and direction (left/right) are required"))
		return
	}

	ctx := c.Request.Context()
	actorID, err := h.Dir.ResolveUsername(ctx, callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	targetID, err := h.Dir.ResolveUsername(ctx, req.TargetUsername)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.Matches.EvaluateSwipe(ctx, actorID, targetID, req.Direction)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"swipe_id":         result.SwipeID,
		"match_found":      result.MatchCreated,
		"remaining_swipes": result.Remaining,
	})
}

// GetMatches lists the caller's active matches, most recent first.
func (h *Handler) GetMatches(c *gin.Context) {
	userID, err := h.Dir.ResolveUsername(c.Request.Context(), callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	matches, err := h.Matches.GetMatches(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "matches": matches})
}
