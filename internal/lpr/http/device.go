package http

import (
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
)

// DeviceFromRequest collects the client signals the device fingerprint is
// computed from. Missing headers stay empty; the hash is canonical either
// way.
func DeviceFromRequest(r *http.Request) domain.Device {
	return domain.Device{
		UserAgent:        r.Header.Get("User-Agent"),
		AcceptLanguage:   r.Header.Get("Accept-Language"),
		ScreenResolution: r.Header.Get("X-Screen-Resolution"),
		Timezone:         r.Header.Get("X-Timezone"),
	}
}
