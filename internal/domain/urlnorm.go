package domain

import (
	"errors"
	"net/url"
	"strings"

	"github.com/allmytab/startpage/internal/apperror"
)

// NormalizeURL converts a raw URL string into its canonical comparable form:
// whitespace trimmed, scheme defaulted to http, host lowercased, then
// re-serialized through the URL parser. Dedup keys and favicon lookups both
// go through here so they agree on the canonical domain.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperror.InvalidURL(raw, errors.New("empty input"))
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", apperror.InvalidURL(raw, err)
	}
	if u.Host == "" {
		return "", apperror.InvalidURL(raw, errors.New("missing host"))
	}
	u.Host = strings.ToLower(u.Host)
	return u.String(), nil
}

// URLHost extracts the hostname from a raw URL using the same normalization
// as NormalizeURL.
func URLHost(raw string) (string, error) {
	normalized, err := NormalizeURL(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", apperror.InvalidURL(raw, err)
	}
	return u.Hostname(), nil
}
