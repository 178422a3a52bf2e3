package domain

import (
	"strings"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
)

// Device carries the client signals a token can be bound to. All fields
// are optional; a zero Device means the caller sent no device signals.
type Device struct {
	UserAgent        string `json:"user_agent"`
	AcceptLanguage   string `json:"accept_language"`
	ScreenResolution string `json:"screen_resolution,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
}

// IsZero reports whether no signal was supplied at all.
func (d Device) IsZero() bool {
	return d.UserAgent == "" && d.AcceptLanguage == "" && d.ScreenResolution == "" && d.Timezone == ""
}

// Hash produces the device fingerprint: SHA-256 over the canonical
// newline-joined field encoding, base64url. The field order is part of
// the wire contract, changing it invalidates every bound token.
func (d Device) Hash() string {
	canonical := strings.Join([]string{
		d.UserAgent,
		d.AcceptLanguage,
		d.ScreenResolution,
		d.Timezone,
	}, "\n")
	return cryptox.Fingerprint(canonical)
}
