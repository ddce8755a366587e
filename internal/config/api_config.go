package config

import (
	"strconv"
	"time"
)

const (
	apiBaseURLVar  = "PORTAL_API_URL"
	httpTimeoutVar = "PORTAL_HTTP_TIMEOUT_SECONDS"

	defaultAPIBaseURL = "http://localhost:8000/api/v1"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the base address of the portal API. An
// environment-supplied override wins, otherwise the local development
// default is used.
func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, defaultAPIBaseURL)
}

func (API) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
