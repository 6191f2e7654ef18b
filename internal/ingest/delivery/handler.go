package delivery

import (
	"errors"
	"net/http"

	"subwatch-backend/internal/ingest"

	"github.com/gin-gonic/gin"
)

// FetchHandler exposes the scheduled fetch trigger endpoint
type FetchHandler struct {
	engine *ingest.Engine
}

func NewFetchHandler(engine *ingest.Engine) *FetchHandler {
	return &FetchHandler{
		engine: engine,
	}
}

// Trigger runs one fetch cycle. Invoked by an external cron; safe to call
// concurrently and redundantly.
// GET /api/fetch/trigger
func (h *FetchHandler) Trigger(c *gin.Context) {
	result, err := h.engine.RunFetchCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, ingest.ErrCycleRunning) {
			// Expected under overlapping triggers, not an error
			c.JSON(http.StatusOK, gin.H{
				"status": "skipped",
				"reason": "already_running",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
