package app

import (
	"crypto/subtle"
	"net/http"
)

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidAPIKey(key)
}

// IsInvalidAPIKey checks key against the configured API keys using a
// constant-time comparison. Every candidate is checked so the timing does
// not reveal which key matched.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	valid := false
	for _, candidate := range app.Config.ApiKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			valid = true
		}
	}

	return !valid
}
