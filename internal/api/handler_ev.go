package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-status-backend/internal/model"
)

// chargerResponse is the wire shape of a single charger.
type chargerResponse struct {
	ChargerID   string  `json:"charger_id"`
	LotID       string  `json:"lot_id"`
	Name        string  `json:"name"`
	PowerKW     float64 `json:"power_kw"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"last_updated"`
}

// chargerSummary is the per-status tally included with every charger listing.
type chargerSummary struct {
	Total        int `json:"total"`
	Available    int `json:"available"`
	InUse        int `json:"in_use"`
	OutOfService int `json:"out_of_service"`
}

// GetChargerStatus handles the GET /api/ev request. With lot_id the list is
// filtered to one facility; without it, all chargers are returned.
func (h *Handler) GetChargerStatus(c *gin.Context) {
	var (
		chargers []model.Charger
		err      error
	)

	if lotID := c.Query("lot_id"); lotID != "" {
		if _, err = h.store.GetFacility(c.Request.Context(), lotID); err != nil {
			abortStoreError(c, err)
			return
		}
		chargers, err = h.store.ListChargersByFacility(c.Request.Context(), lotID)
	} else {
		chargers, err = h.store.ListChargers(c.Request.Context())
	}
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chargers": buildChargerResponses(chargers),
		"summary":  tallyChargers(chargers),
	})
}

func buildChargerResponses(chargers []model.Charger) []chargerResponse {
	responses := make([]chargerResponse, len(chargers))
	for i, charger := range chargers {
		responses[i] = chargerResponse{
			ChargerID:   charger.ID,
			LotID:       charger.FacilityID,
			Name:        charger.Name,
			PowerKW:     charger.PowerKW,
			Status:      string(charger.Status),
			LastUpdated: isoTime(charger.UpdatedAt),
		}
	}
	return responses
}

func tallyChargers(chargers []model.Charger) chargerSummary {
	summary := chargerSummary{Total: len(chargers)}
	for _, charger := range chargers {
		switch charger.Status {
		case model.ChargerAvailable:
			summary.Available++
		case model.ChargerInUse:
			summary.InUse++
		case model.ChargerOutOfService:
			summary.OutOfService++
		}
	}
	return summary
}
