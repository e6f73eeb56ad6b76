package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/da"
)

// RiskRankings handles GET /api/shows/:showId/risk.
func (h *Handler) RiskRankings(c *gin.Context) {
	showID := c.Param("showId")
	rankings, err := h.engine.RiskRankings(c.Request.Context(), showID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "showId": showID, "riskRankings": rankings})
}

// News handles GET /api/shows/:showId/news?limit=n.
func (h *Handler) News(c *gin.Context) {
	if h.deps.News == nil {
		unavailable(c, "News feed", "no news store")
		return
	}
	limit, err := listLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.deps.News.List(c.Request.Context(), c.Param("showId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []core.NewsItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "news": items})
}

// Cycles handles GET /api/shows/:showId/cycles?limit=n.
func (h *Handler) Cycles(c *gin.Context) {
	if h.deps.Cycles == nil {
		unavailable(c, "Cycle ledger", "no ledger store")
		return
	}
	limit, err := listLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recs, err := h.deps.Cycles.List(c.Param("showId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []core.CycleRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cycles": recs})
}

// Recap handles GET /api/shows/:showId/recap?limit=n.
func (h *Handler) Recap(c *gin.Context) {
	if h.deps.Recaps == nil {
		unavailable(c, "Recap", "no news store")
		return
	}
	limit, err := listLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recap, err := h.deps.Recaps.Recap(c.Request.Context(), c.Param("showId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recap": recap})
}

// ArchiveShow handles POST /api/shows/:showId/archive.
func (h *Handler) ArchiveShow(c *gin.Context) {
	if h.deps.Archive == nil {
		unavailable(c, "Archive", "EIGENDA_AUTH_PK is not set")
		return
	}
	ref, err := h.deps.Archive.Archive(c.Request.Context(), c.Param("showId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "archive": ref})
}

// ListArchives handles GET /api/shows/:showId/archives.
func (h *Handler) ListArchives(c *gin.Context) {
	if h.deps.Archive == nil {
		unavailable(c, "Archive", "EIGENDA_AUTH_PK is not set")
		return
	}
	refs, err := h.deps.Archive.References(c.Param("showId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if refs == nil {
		refs = []da.BlobReference{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "archives": refs})
}

// GetArchive handles GET /api/archive/:dataId.
func (h *Handler) GetArchive(c *gin.Context) {
	if h.deps.Archive == nil {
		unavailable(c, "Archive", "EIGENDA_AUTH_PK is not set")
		return
	}
	archive, err := h.deps.Archive.Retrieve(c.Request.Context(), c.Param("dataId"))
	if errors.Is(err, da.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Archive not found", "details": err.Error(), "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "archive": archive})
}
