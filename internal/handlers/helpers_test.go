package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/geo"
)

// setupMockDB swaps the package-global pool for a sqlmock connection and
// restores it on cleanup. The schema resolver cache is flushed on both sides
// so tests never see columns cached by a neighbour.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	original := database.DB
	database.DB = db
	database.Resolver.Invalidate()

	t.Cleanup(func() {
		database.DB = original
		database.Resolver.Invalidate()
		_ = db.Close()
	})

	return mock
}

// stubGeoServer serves the primary lookup shape for any IP and points the
// shared geo client at itself; the original client is restored on cleanup.
func stubGeoServer(t *testing.T, country, state, city string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country_name":"` + country +
			`","region":"` + state + `","city":"` + city + `"}`))
	}))
	t.Cleanup(server.Close)

	original := Geo
	Geo = geo.NewClient(server.URL, server.URL, server.Client())
	t.Cleanup(func() { Geo = original })

	return server
}

func newTestApp(method, path string, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Add([]string{method}, path, handler)
	return app
}
