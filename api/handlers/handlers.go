package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/communication"
	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/da"
	"github.com/NethermindEth/chaoschain-reality/engine"
	"github.com/NethermindEth/chaoschain-reality/insights"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// NewsLister reads a show's feed, newest first.
type NewsLister interface {
	List(ctx context.Context, showID string, limit int) ([]core.NewsItem, error)
}

// CycleLister reads a show's ledger, newest first.
type CycleLister interface {
	List(showID string, limit int) ([]core.CycleRecord, error)
}

// Deps are the optional read-side collaborators. Routes whose dependency is nil answer 503.
type Deps struct {
	News    NewsLister
	Cycles  CycleLister
	Recaps  *insights.Extractor
	Archive *da.Service
	WS      *communication.WebSocketManager
}

// Handler serves the show API.
type Handler struct {
	engine *engine.Engine
	deps   Deps
}

func New(e *engine.Engine, deps Deps) *Handler {
	return &Handler{engine: e, deps: deps}
}

// flexID accepts ids sent as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	*f = flexID(n.String())
	return nil
}

// respondError writes {success:false, error, details, code} with the error's status.
func respondError(c *gin.Context, err error) {
	tagged, ok := core.AsError(err)
	if !ok {
		log.Printf("API %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error",
			"details": err.Error(),
			"code":    "INTERNAL",
		})
		return
	}
	msg := tagged.Message
	if msg == "" {
		msg = string(tagged.Code)
	}
	c.JSON(tagged.HTTPStatus(), gin.H{
		"success": false,
		"error":   msg,
		"details": tagged.Details(),
		"code":    tagged.Code,
	})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, core.ValidationError("Invalid request body: %v", err))
}

func unavailable(c *gin.Context, what, details string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"error":   what + " is not configured",
		"details": details,
		"code":    "UNAVAILABLE",
	})
}

func listLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, core.ValidationError("limit must be a positive integer, got %q", raw)
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

func lastReceipt(rs []core.Receipt) *core.Receipt {
	if len(rs) == 0 {
		return nil
	}
	return &rs[len(rs)-1]
}
