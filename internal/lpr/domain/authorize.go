package domain

import (
	"strings"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// Authorize reports whether any granted scope covers the required one.
// A granted scope matches iff its method equals the required method or
// is the wildcard, AND the required URL pattern starts with the granted
// pattern. First match wins. Pure, no I/O.
func Authorize(required jwtx.Scope, granted []jwtx.Scope) bool {
	req := required.Normalize()

	for _, g := range granted {
		g = g.Normalize()

		if g.Method != jwtx.Wildcard && g.Method != req.Method {
			continue
		}
		if strings.HasPrefix(req.URLPattern, g.URLPattern) {
			return true
		}
	}

	return false
}
