package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parking-status-backend/internal/forecast"
	"parking-status-backend/internal/model"
)

// forecastHorizons are the fixed horizons served by the forecast endpoint.
var forecastHorizons = []int{15, 30, 60}

// forecastLookback is how much history feeds the engine. A full week is
// needed for the same-time-last-week component to ever match.
const forecastLookback = 7 * 24 * time.Hour

// GetForecast handles the GET /api/forecast request.
func (h *Handler) GetForecast(c *gin.Context) {
	lotID := c.Query("lot_id")
	if lotID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "lot_id query parameter is required"})
		return
	}

	facility, err := h.store.GetFacility(c.Request.Context(), lotID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	history, err := h.store.OccupancyHistory(c.Request.Context(), facility.ID, forecastLookback)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	h.metrics.RecordForecastRequest()
	generatedAt := time.Now().UTC()

	forecasts := make(map[string]forecast.Result, len(forecastHorizons))
	for _, horizon := range forecastHorizons {
		result := h.engine.Forecast(history, facility, horizon)
		forecasts[strconv.Itoa(horizon)] = result

		// Audit only; a failed log write must not fail the request.
		if err := h.store.LogForecast(c.Request.Context(), model.ForecastLog{
			FacilityID:        facility.ID,
			GeneratedAt:       generatedAt,
			HorizonMinutes:    horizon,
			PredictedOccupied: result.PredictedOccupied,
			PredictedOpen:     result.PredictedOpen,
			Confidence:        result.Confidence,
			Method:            result.Method,
		}); err != nil {
			log.Printf("Warning: failed to log forecast for facility %s: %v", facility.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"lot_id":       facility.ID,
		"lot_name":     facility.Name,
		"forecasts":    forecasts,
		"generated_at": isoTime(generatedAt),
	})
}
