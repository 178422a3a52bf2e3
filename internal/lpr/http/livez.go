package http

import (
	"net/http"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running; it never touches the store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lprsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := lprsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
