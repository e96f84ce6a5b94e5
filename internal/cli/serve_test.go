package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzizi/wageni/internal/database"
)

const testDashboard = `<html><title>{{.Title}}</title><footer>{{.Version}}</footer></html>`
const testTracker = `(function(){})();`

func newServeTestApp() *fiber.App {
	return newApp("1.2.3-test", []byte(testDashboard), []byte(testTracker))
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func TestVersionHeaderOnEveryResponse(t *testing.T) {
	app := newServeTestApp()

	resp, _ := get(t, app, "/health")
	assert.Equal(t, "1.2.3-test", resp.Header.Get("X-Wageni-Version"))
}

func TestHealthEndpoint(t *testing.T) {
	app := newServeTestApp()

	resp, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestUpEndpoint_DatabaseDown(t *testing.T) {
	original := database.DB
	database.DB = nil
	t.Cleanup(func() { database.DB = original })

	app := newServeTestApp()
	resp, _ := get(t, app, "/up")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUpEndpoint_DatabaseUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	original := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = original
		_ = db.Close()
	})

	app := newServeTestApp()
	resp, body := get(t, app, "/up")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"up"}`, body)
}

func TestVersionEndpoint(t *testing.T) {
	app := newServeTestApp()

	resp, body := get(t, app, "/api/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &result))
	assert.Equal(t, "1.2.3-test", result["version"])
}

func TestTrackerScriptServedOnBothPaths(t *testing.T) {
	app := newServeTestApp()

	for _, path := range []string{"/w.js", "/wageni.js"} {
		resp, body := get(t, app, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, testTracker, body)
		assert.Contains(t, resp.Header.Get("Content-Type"), "javascript")
	}
}

func TestDashboardTemplateSubstitution(t *testing.T) {
	app := newServeTestApp()

	resp, body := get(t, app, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Wageni Dashboard")
	assert.Contains(t, body, "1.2.3-test")
	assert.NotContains(t, body, "{{.")
}

func TestIndexPage(t *testing.T) {
	app := newServeTestApp()

	resp, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "Wageni"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
