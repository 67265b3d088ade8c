package mw

import (
	"net/http"
	"strings"

	"github.com/allmytab/startpage/internal/auth"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// Verifier validates a raw token and returns its claims.
type Verifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Auth requires a valid bearer token and puts the viewer on the request
// context. Viewers with no profession or country claim default to the
// unfiltered sentinels.
func Auth(tokens Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Debug("token rejected", logger.Error(err))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			v := domain.Viewer{
				ID:         claims.Subject,
				Profession: claims.Profession,
				Country:    claims.Country,
			}
			if v.Profession == "" {
				v.Profession = domain.ProfessionAll
			}
			if v.Country == "" {
				v.Country = domain.CountryGlobal
			}

			next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), v)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie("startpage_token"); err == nil {
		return c.Value
	}
	return ""
}
