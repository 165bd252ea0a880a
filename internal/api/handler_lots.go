package api

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-status-backend/internal/model"
)

// lotResponse is the enriched facility record served by GET /api/lots.
type lotResponse struct {
	LotID            string   `json:"lot_id"`
	Name             string   `json:"name"`
	Capacity         int      `json:"capacity"`
	ShadedCapacity   int      `json:"shaded_capacity"`
	CurrentOccupied  int      `json:"current_occupied"`
	CurrentOpen      int      `json:"current_open"`
	OccupancyPercent float64  `json:"occupancy_percent"`
	ShadedOpen       int      `json:"shaded_open"`
	EVAvailable      int      `json:"ev_available"`
	EVTotal          int      `json:"ev_total"`
	LastUpdated      *string  `json:"last_updated"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// historyPoint is one observation in a lot detail response.
type historyPoint struct {
	Timestamp      string `json:"timestamp"`
	Occupied       int    `json:"occupied"`
	ShadedOccupied int    `json:"shaded_occupied"`
}

// GetLots handles the GET /api/lots request.
func (h *Handler) GetLots(c *gin.Context) {
	facilities, err := h.store.ListFacilities(c.Request.Context())
	if err != nil {
		abortStoreError(c, err)
		return
	}

	lots := make([]lotResponse, 0, len(facilities))
	for _, facility := range facilities {
		latest, err := h.store.LatestOccupancy(c.Request.Context(), facility.ID)
		if err != nil {
			abortStoreError(c, err)
			return
		}
		chargers, err := h.store.ListChargersByFacility(c.Request.Context(), facility.ID)
		if err != nil {
			abortStoreError(c, err)
			return
		}
		lots = append(lots, buildLotResponse(facility, latest, chargers))
	}

	c.JSON(http.StatusOK, gin.H{"lots": lots})
}

// GetLotDetail handles the GET /api/lots/:lot_id request.
func (h *Handler) GetLotDetail(c *gin.Context) {
	lotID := c.Param("lot_id")

	facility, err := h.store.GetFacility(c.Request.Context(), lotID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	latest, err := h.store.LatestOccupancy(c.Request.Context(), facility.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	chargers, err := h.store.ListChargersByFacility(c.Request.Context(), facility.ID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	history, err := h.store.OccupancyHistory(c.Request.Context(), facility.ID, 24*time.Hour)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	points := make([]historyPoint, len(history))
	for i, obs := range history {
		points[i] = historyPoint{
			Timestamp:      isoTime(obs.ObservedAt),
			Occupied:       obs.Occupied,
			ShadedOccupied: obs.ShadedOccupied,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"lot":      buildLotResponse(facility, latest, chargers),
		"chargers": buildChargerResponses(chargers),
		"history":  points,
	})
}

func buildLotResponse(facility model.Facility, latest *model.OccupancyObservation, chargers []model.Charger) lotResponse {
	resp := lotResponse{
		LotID:          facility.ID,
		Name:           facility.Name,
		Capacity:       facility.Capacity,
		ShadedCapacity: facility.ShadedCapacity,
		CurrentOpen:    facility.Capacity,
		ShadedOpen:     facility.ShadedCapacity,
		Latitude:       facility.Latitude,
		Longitude:      facility.Longitude,
	}

	if latest != nil {
		resp.CurrentOccupied = latest.Occupied
		resp.CurrentOpen = facility.Capacity - latest.Occupied
		if resp.CurrentOpen < 0 {
			resp.CurrentOpen = 0
		}
		if facility.Capacity > 0 {
			percent := float64(latest.Occupied) / float64(facility.Capacity) * 100
			resp.OccupancyPercent = math.Round(percent*10) / 10
		}
		resp.ShadedOpen = facility.ShadedCapacity - latest.ShadedOccupied
		if resp.ShadedOpen < 0 {
			resp.ShadedOpen = 0
		}
		ts := isoTime(latest.ObservedAt)
		resp.LastUpdated = &ts
	}

	for _, charger := range chargers {
		resp.EVTotal++
		if charger.Status == model.ChargerAvailable {
			resp.EVAvailable++
		}
	}
	return resp
}
