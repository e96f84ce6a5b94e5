package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overviewColumns() []string {
	return []string{
		"total_visits", "unique_visitors", "countries_visited",
		"cities_visited", "avg_hours_since_visit", "first_visit",
		"last_visit",
	}
}

func geoStatColumns() []string {
	return []string{"name", "visits", "unique_visitors"}
}

func TestHandleAnalytics_EmptyTable(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("COUNT\\(DISTINCT country\\)").
		WillReturnRows(sqlmock.NewRows(overviewColumns()).
			AddRow(int64(0), int64(0), int64(0), int64(0), nil, nil, nil))
	mock.ExpectQuery("WHERE country != 'Unknown'").
		WillReturnRows(sqlmock.NewRows(geoStatColumns()))
	mock.ExpectQuery("WHERE city != 'Unknown'").
		WillReturnRows(sqlmock.NewRows(geoStatColumns()))
	mock.ExpectQuery("visits_last_24h").
		WillReturnRows(sqlmock.NewRows([]string{"visits", "unique"}).
			AddRow(int64(0), int64(0)))
	mock.ExpectQuery("EXTRACT\\(HOUR FROM visit_time\\)").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "visits"}))
	mock.ExpectQuery("DATE\\(visit_time\\)").
		WillReturnRows(sqlmock.NewRows([]string{"date", "visits", "unique"}))

	app := newTestApp(http.MethodGet, "/api/analytics", HandleAnalytics)
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result AnalyticsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(0), result.Overview.TotalVisits)
	assert.Nil(t, result.Overview.AvgHoursSinceVisit)
	assert.Nil(t, result.Overview.FirstVisit)
	assert.Nil(t, result.Overview.LastVisit)
	assert.Empty(t, result.TopCountries)
	assert.Empty(t, result.TopCities)
	assert.NotNil(t, result.TopCountries)
	assert.NotNil(t, result.TopCities)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleAnalytics_TopCountriesOrderedWithCodes(t *testing.T) {
	mock := setupMockDB(t)

	now := time.Now()
	mock.ExpectQuery("COUNT\\(DISTINCT country\\)").
		WillReturnRows(sqlmock.NewRows(overviewColumns()).
			AddRow(int64(15), int64(9), int64(3), int64(4), 1.5, now.Add(-48*time.Hour), now))
	mock.ExpectQuery("WHERE country != 'Unknown'").
		WillReturnRows(sqlmock.NewRows(geoStatColumns()).
			AddRow("United States", int64(8), int64(5)).
			AddRow("Germany", int64(4), int64(2)).
			AddRow("Kenya", int64(3), int64(2)))
	mock.ExpectQuery("WHERE city != 'Unknown'").
		WillReturnRows(sqlmock.NewRows(geoStatColumns()).
			AddRow("Mountain View", int64(8), int64(5)))
	mock.ExpectQuery("visits_last_24h").
		WillReturnRows(sqlmock.NewRows([]string{"visits", "unique"}).
			AddRow(int64(6), int64(4)))
	mock.ExpectQuery("EXTRACT\\(HOUR FROM visit_time\\)").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "visits"}).
			AddRow(9, int64(2)).
			AddRow(14, int64(4)))
	mock.ExpectQuery("DATE\\(visit_time\\)").
		WillReturnRows(sqlmock.NewRows([]string{"date", "visits", "unique"}).
			AddRow(time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), int64(9), int64(6)).
			AddRow(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), int64(6), int64(4)))

	app := newTestApp(http.MethodGet, "/api/analytics", HandleAnalytics)
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result AnalyticsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Len(t, result.TopCountries, 3)
	assert.Equal(t, "United States", result.TopCountries[0].Country)
	assert.Equal(t, "US", result.TopCountries[0].Code)
	assert.Equal(t, "DE", result.TopCountries[1].Code)
	assert.Equal(t, "KE", result.TopCountries[2].Code)

	var total int64
	previous := result.TopCountries[0].Visits
	for _, stat := range result.TopCountries {
		assert.LessOrEqual(t, stat.Visits, previous)
		previous = stat.Visits
		total += stat.Visits
	}
	assert.LessOrEqual(t, total, int64(15))

	require.NotNil(t, result.Overview.AvgHoursSinceVisit)
	assert.InDelta(t, 1.5, *result.Overview.AvgHoursSinceVisit, 0.0001)

	require.Len(t, result.DailyDistribution, 2)
	assert.Equal(t, "2026-08-27", result.DailyDistribution[0].Date)
	assert.Equal(t, "2026-08-28", result.DailyDistribution[1].Date)

	require.Len(t, result.HourlyDistribution, 2)
	assert.Equal(t, 9, result.HourlyDistribution[0].Hour)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleAnalytics_OverviewQueryError(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery("COUNT\\(DISTINCT country\\)").
		WillReturnError(assert.AnError)

	app := newTestApp(http.MethodGet, "/api/analytics", HandleAnalytics)
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result["error"])
}

func TestCountryCode(t *testing.T) {
	assert.Equal(t, "US", countryCode("United States"))
	assert.Equal(t, "KE", countryCode("Kenya"))
	assert.Equal(t, "", countryCode("Atlantis"))
}
