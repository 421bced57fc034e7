package api

import (
	"context"
	"net/http"
	"time"

	"threatshare/storage"
)

// healthCheckTimeout bounds each dependency probe
const healthCheckTimeout = 3 * time.Second

// HealthResponse reports dependency status
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Cache   string `json:"cache"`
}

// getPopularTags godoc
//
//	@Summary		Popular tags
//	@Description	Returns the 20 most used tags with their counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	SuccessResponse{data=[]storage.TagCount}
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/tags/popular [get]
//	@Security		BearerAuth
func (a *API) getPopularTags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.stats.PopularTags(r.Context(), storage.PopularTagsLimit)
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to fetch tags")
		return
	}
	a.respondData(w, tags)
}

// getDashboard godoc
//
//	@Summary		Dashboard statistics
//	@Description	Totals per type and threat level, the newest submissions and daily submission counts
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	SuccessResponse{data=storage.DashboardStats}
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/analytics/dashboard [get]
//	@Security		BearerAuth
func (a *API) getDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.stats.DashboardStats(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to load dashboard statistics")
		return
	}
	a.respondData(w, stats)
}

// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports storage and cache status. Returns 503 when storage is unreachable; a degraded cache is reported but tolerated.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Storage: "up", Cache: "disabled"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := a.stats.HealthCheck(ctx); err != nil {
		a.logger.Errorw("Storage health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Storage = "down"
		status = http.StatusServiceUnavailable
	}

	if a.cache != nil {
		resp.Cache = "up"
		if err := a.cache.Ping(ctx); err != nil {
			a.logger.Warnw("Cache health check failed", "error", err)
			resp.Cache = "down"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	a.respondJSON(w, resp, status)
}
