package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type decisionRequest struct {
	ShowID  flexID `json:"showId"`
	Context string `json:"context"`
}

// FetchDecision handles POST /api/decision. Nothing is written to the chain.
func (h *Handler) FetchDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.FetchDecision(c.Request.Context(), string(req.ShowID), req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"aiDecision":      res.Decision,
		"availableAgents": res.AvailableAgents,
	})
}

// ExecuteDecision handles POST /api/decision/execute: decide and apply in one cycle.
func (h *Handler) ExecuteDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.RunDecisionCycle(c.Request.Context(), string(req.ShowID), req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	body := actionBody(res.Action)
	body["aiDecision"] = res.Decision.Decision
	body["availableAgents"] = res.Decision.AvailableAgents
	c.JSON(http.StatusOK, body)
}
