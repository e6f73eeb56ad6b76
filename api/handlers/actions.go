package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/engine"
)

// actionRequest accepts every body shape the action routes have used.
type actionRequest struct {
	ShowID     flexID   `json:"showId"`
	AgentID    flexID   `json:"agentId"`
	AgentID1   flexID   `json:"agentId1"`
	AgentID2   flexID   `json:"agentId2"`
	BetrayerID flexID   `json:"betrayerId"`
	BetrayedID flexID   `json:"betrayedId"`
	GossiperID flexID   `json:"gossiperId"`
	TargetID   flexID   `json:"targetId"`
	AgentIDs   []flexID `json:"agentIds"`
}

// agentIDs returns the ids in parameter order. Empty fields are skipped so a
// missing second id surfaces as an arity error.
func (r actionRequest) agentIDs() []string {
	var ids []string
	add := func(fs ...flexID) {
		for _, f := range fs {
			if f != "" {
				ids = append(ids, string(f))
			}
		}
	}
	switch {
	case len(r.AgentIDs) > 0:
		add(r.AgentIDs...)
	case r.AgentID1 != "" || r.AgentID2 != "":
		add(r.AgentID1, r.AgentID2)
	case r.BetrayerID != "" || r.BetrayedID != "":
		add(r.BetrayerID, r.BetrayedID)
	case r.GossiperID != "" || r.TargetID != "":
		add(r.GossiperID, r.TargetID)
	default:
		add(r.AgentID)
	}
	return ids
}

// ListActions describes the catalog.
func (h *Handler) ListActions(c *gin.Context) {
	defs := h.engine.Catalog().Definitions()
	out := make([]gin.H, 0, len(defs))
	for _, d := range defs {
		out = append(out, gin.H{
			"name":        d.Name,
			"arity":       d.Arity,
			"roles":       d.Roles,
			"description": d.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "actions": out})
}

// ApplyAction handles POST /api/actions/:action.
func (h *Handler) ApplyAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.engine.ApplyAction(c.Request.Context(), string(req.ShowID), c.Param("action"), req.agentIDs())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionBody(res))
}

func actionBody(res *engine.ActionResult) gin.H {
	return gin.H{
		"success":      true,
		"action":       res.Outcome.Action,
		"branch":       res.Outcome.Branch,
		"message":      res.Outcome.Message(),
		"traitChanges": res.Outcome.Changes,
		"transaction":  lastReceipt(res.Transactions),
		"transactions": res.Transactions,
	}
}
