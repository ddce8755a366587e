package config_test

import (
	"testing"
	"time"

	"github.com/careplanhq/portal-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestAPIBaseURLDefault(t *testing.T) {
	c := config.New()
	require.Equal(t, "http://localhost:8000/api/v1", c.GetAPIBaseURL())
}

func TestAPIBaseURLOverride(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "https://portal.example.com/api/v1")

	c := config.New()
	require.Equal(t, "https://portal.example.com/api/v1", c.GetAPIBaseURL())
}

func TestHTTPTimeout(t *testing.T) {
	c := config.New()
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())

	t.Setenv("PORTAL_HTTP_TIMEOUT_SECONDS", "5")
	require.Equal(t, 5*time.Second, c.GetHTTPTimeout())

	t.Setenv("PORTAL_HTTP_TIMEOUT_SECONDS", "not-a-number")
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
}

func TestDataFolderDefault(t *testing.T) {
	c := config.New()
	require.Equal(t, "./data", c.GetDataFolder())
}
