package mw

import (
	"net/http"

	"github.com/allmytab/startpage/internal/logger"
	"github.com/allmytab/startpage/internal/utils"
)

// AdminOnly allows only specific IPs/CIDRs to reach operator endpoints.
// An empty list does NOT filter (passthrough). trustProxy should be true
// when running behind a trusted reverse proxy.
func AdminOnly(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AdminOnly: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debugf("AdminOnly: IP %s rejected", ip)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
