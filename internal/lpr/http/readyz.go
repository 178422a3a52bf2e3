package http

import (
	"net/http"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/httpx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, store mode, and status of the revocation store and signing keyring
//	@Description	A deployment serving from its in-process fallback reports degraded but stays ready
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lprsdk.HealthResponse	"status, uptime, version, mode, checks"
//	@Failure		503	{object}	lprsdk.HealthResponse	"status, uptime, version, mode, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	ring *jwtx.Keyring,
	mode store.ModeReporter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &lprsdk.HealthChecks{
			Store:  "ok",
			Signer: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK
		storeMode := "primary"

		// Check store connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			overallStatus = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		// Check the signing keyring has an active key loaded
		if ring == nil || !ring.IsReady() {
			checks.Signer = "error: no keys loaded"
			overallStatus = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		// Fallback mode is degraded but still ready; fail-open keeps the
		// service answering.
		if mode != nil && mode.Degraded() {
			storeMode = "fallback"
			if statusCode == http.StatusOK {
				overallStatus = "degraded"
			}
		}

		response := lprsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Mode:    storeMode,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
