package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-status-backend/internal/forecast"
	"parking-status-backend/internal/model"
	"parking-status-backend/internal/store"
)

// mockStore is a fixture-backed implementation of store.Store.
type mockStore struct {
	mu         sync.Mutex
	facilities []model.Facility
	latest     map[string]*model.OccupancyObservation
	history    map[string][]model.OccupancyObservation
	chargers   []model.Charger
	logged     []model.ForecastLog
}

func (m *mockStore) Seed(ctx context.Context, facilities []model.Facility, chargers []model.Charger) error {
	return nil
}

func (m *mockStore) GetFacility(ctx context.Context, id string) (model.Facility, error) {
	for _, f := range m.facilities {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Facility{}, fmt.Errorf("facility %q: %w", id, store.ErrNotFound)
}

func (m *mockStore) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	return m.facilities, nil
}

func (m *mockStore) AppendOccupancy(ctx context.Context, facilityID string, occupied, shadedOccupied int, at time.Time) (string, error) {
	return "", nil
}

func (m *mockStore) LatestOccupancy(ctx context.Context, facilityID string) (*model.OccupancyObservation, error) {
	return m.latest[facilityID], nil
}

func (m *mockStore) OccupancyHistory(ctx context.Context, facilityID string, lookback time.Duration) ([]model.OccupancyObservation, error) {
	return m.history[facilityID], nil
}

func (m *mockStore) UpsertCharger(ctx context.Context, charger model.Charger) error {
	return nil
}

func (m *mockStore) SetChargerStatus(ctx context.Context, chargerID string, status model.ChargerStatus) error {
	return nil
}

func (m *mockStore) ListChargersByFacility(ctx context.Context, facilityID string) ([]model.Charger, error) {
	var out []model.Charger
	for _, c := range m.chargers {
		if c.FacilityID == facilityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) ListChargers(ctx context.Context) ([]model.Charger, error) {
	return m.chargers, nil
}

func (m *mockStore) LogForecast(ctx context.Context, entry model.ForecastLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logged = append(m.logged, entry)
	return nil
}

func fixtureStore() *mockStore {
	now := time.Now().UTC()
	return &mockStore{
		facilities: []model.Facility{
			{ID: "lot-a", Name: "Lot A", Capacity: 200, ShadedCapacity: 20},
		},
		latest: map[string]*model.OccupancyObservation{
			"lot-a": {FacilityID: "lot-a", ObservedAt: now, Occupied: 150, ShadedOccupied: 30},
		},
		history: map[string][]model.OccupancyObservation{
			"lot-a": {
				{FacilityID: "lot-a", ObservedAt: now.Add(-30 * time.Minute), Occupied: 140},
				{FacilityID: "lot-a", ObservedAt: now.Add(-15 * time.Minute), Occupied: 150},
			},
		},
		chargers: []model.Charger{
			{ID: "ev-1", FacilityID: "lot-a", Name: "A1", PowerKW: 11.5, Status: model.ChargerAvailable, UpdatedAt: now},
			{ID: "ev-2", FacilityID: "lot-a", Name: "A2", PowerKW: 11.5, Status: model.ChargerAvailable, UpdatedAt: now},
			{ID: "ev-3", FacilityID: "lot-a", Name: "A3", PowerKW: 50, Status: model.ChargerInUse, UpdatedAt: now},
			{ID: "ev-4", FacilityID: "lot-a", Name: "A4", PowerKW: 7.2, Status: model.ChargerOutOfService, UpdatedAt: now},
		},
	}
}

func testRouter(s store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(s, &forecast.Engine{}, nil)

	r := gin.New()
	r.GET("/health", GetHealth)
	r.GET("/api/lots", handler.GetLots)
	r.GET("/api/lots/:lot_id", handler.GetLotDetail)
	r.GET("/api/forecast", handler.GetForecast)
	r.GET("/api/ev", handler.GetChargerStatus)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestGetHealth(t *testing.T) {
	w, body := doRequest(t, testRouter(fixtureStore()), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestGetLots_EnrichesFacilities(t *testing.T) {
	w, body := doRequest(t, testRouter(fixtureStore()), "/api/lots")

	require.Equal(t, http.StatusOK, w.Code)
	lots := body["lots"].([]any)
	require.Len(t, lots, 1)
	lot := lots[0].(map[string]any)

	assert.Equal(t, "lot-a", lot["lot_id"])
	assert.Equal(t, float64(150), lot["current_occupied"])
	assert.Equal(t, float64(50), lot["current_open"])
	assert.Equal(t, 75.0, lot["occupancy_percent"])
	// 30 shaded-occupied against a shaded capacity of 20 clamps to zero,
	// never negative.
	assert.Equal(t, float64(0), lot["shaded_open"])
	assert.Equal(t, float64(2), lot["ev_available"])
	assert.Equal(t, float64(4), lot["ev_total"])
	assert.NotNil(t, lot["last_updated"])
}

func TestGetLots_NoObservationsYet(t *testing.T) {
	s := fixtureStore()
	s.latest = nil

	w, body := doRequest(t, testRouter(s), "/api/lots")

	require.Equal(t, http.StatusOK, w.Code)
	lot := body["lots"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(0), lot["current_occupied"])
	assert.Equal(t, float64(200), lot["current_open"])
	assert.Nil(t, lot["last_updated"])
}

func TestGetForecast_RequiresLotID(t *testing.T) {
	w, _ := doRequest(t, testRouter(fixtureStore()), "/api/forecast")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetForecast_UnknownLot(t *testing.T) {
	w, body := doRequest(t, testRouter(fixtureStore()), "/api/forecast?lot_id=unknown-lot")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["error"], "unknown-lot")
}

func TestGetForecast_ReturnsAllHorizons(t *testing.T) {
	s := fixtureStore()
	w, body := doRequest(t, testRouter(s), "/api/forecast?lot_id=lot-a")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lot-a", body["lot_id"])
	assert.Equal(t, "Lot A", body["lot_name"])
	assert.NotEmpty(t, body["generated_at"])

	forecasts := body["forecasts"].(map[string]any)
	require.Len(t, forecasts, 3)
	for _, horizon := range []string{"15", "30", "60"} {
		entry := forecasts[horizon].(map[string]any)
		confidence := entry["confidence"].(float64)
		assert.GreaterOrEqual(t, confidence, 0.3)
		assert.LessOrEqual(t, confidence, 0.9)
		assert.Equal(t, "blended", entry["method"])
	}

	// One audit row per horizon.
	assert.Len(t, s.logged, 3)
}

func TestGetChargerStatus_SummaryTally(t *testing.T) {
	w, body := doRequest(t, testRouter(fixtureStore()), "/api/ev")

	require.Equal(t, http.StatusOK, w.Code)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["total"])
	assert.Equal(t, float64(2), summary["available"])
	assert.Equal(t, float64(1), summary["in_use"])
	assert.Equal(t, float64(1), summary["out_of_service"])
}

func TestGetChargerStatus_UnknownLot(t *testing.T) {
	w, _ := doRequest(t, testRouter(fixtureStore()), "/api/ev?lot_id=unknown-lot")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLotDetail(t *testing.T) {
	w, body := doRequest(t, testRouter(fixtureStore()), "/api/lots/lot-a")

	require.Equal(t, http.StatusOK, w.Code)
	lot := body["lot"].(map[string]any)
	assert.Equal(t, "lot-a", lot["lot_id"])
	assert.Len(t, body["chargers"].([]any), 4)
	assert.Len(t, body["history"].([]any), 2)
}

func TestGetLotDetail_UnknownLot(t *testing.T) {
	w, _ := doRequest(t, testRouter(fixtureStore()), "/api/lots/unknown-lot")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
