package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-status-backend/internal/forecast"
	"parking-status-backend/internal/metrics"
	"parking-status-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *forecast.Engine
	metrics *metrics.Metrics
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *forecast.Engine, m *metrics.Metrics) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		metrics: m,
	}
}

// abortStoreError maps store errors onto the API error taxonomy. Persistence
// failures are logged but never exposed with internal detail.
func abortStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case store.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("store error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// isoTime renders a timestamp as an ISO-8601 UTC string.
func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
