package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/elimination"
)

type eliminationRequest struct {
	ShowID flexID `json:"showId"`
}

func selectionBody(sel *elimination.Selection) gin.H {
	return gin.H{
		"success":           true,
		"eliminatedAgent":   sel.Target,
		"eliminationReason": sel.Reason,
		"candidates":        sel.Candidates,
		"remainingAgents":   sel.Remaining,
		"riskRankings":      sel.Rankings,
	}
}

// Eliminate handles POST /api/elimination.
func (h *Handler) Eliminate(c *gin.Context) {
	var req eliminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.RunElimination(c.Request.Context(), string(req.ShowID))
	if err != nil {
		respondError(c, err)
		return
	}
	body := selectionBody(res.Selection)
	body["transaction"] = res.Transaction
	c.JSON(http.StatusOK, body)
}

// PreviewElimination handles POST /api/elimination/preview.
func (h *Handler) PreviewElimination(c *gin.Context) {
	var req eliminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sel, err := h.engine.PreviewElimination(c.Request.Context(), string(req.ShowID))
	if err != nil {
		respondError(c, err)
		return
	}
	body := selectionBody(sel)
	body["preview"] = true
	c.JSON(http.StatusOK, body)
}
