package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"parking-status-backend/config"
	"parking-status-backend/internal/forecast"
	"parking-status-backend/internal/metrics"
	"parking-status-backend/internal/mw"
	"parking-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, engine *forecast.Engine, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, m)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/health", GetHealth)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/lots", caching, handler.GetLots)
		api.GET("/lots/:lot_id", caching, handler.GetLotDetail)
		api.GET("/forecast", handler.GetForecast)
		api.GET("/ev", caching, handler.GetChargerStatus)
	}

	return r
}
