package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/biter777/countries"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/logging"
)

// HandleAnalytics runs the fixed battery of aggregate queries and returns
// them as one payload. The queries run independently against the pool, not
// inside one snapshot; concurrent writes between them may skew totals
// slightly and that is accepted.
// GET /api/analytics
func HandleAnalytics(c fiber.Ctx) error {
	ctx := c.Context()

	overview, err := queryOverview(ctx)
	if err != nil {
		return analyticsError(c, "overview", err)
	}

	topCountries, err := queryTopCountries(ctx)
	if err != nil {
		return analyticsError(c, "top countries", err)
	}

	topCities, err := queryTopCities(ctx)
	if err != nil {
		return analyticsError(c, "top cities", err)
	}

	recent, err := queryRecentActivity(ctx)
	if err != nil {
		return analyticsError(c, "recent activity", err)
	}

	hourly, err := queryHourlyDistribution(ctx)
	if err != nil {
		return analyticsError(c, "hourly distribution", err)
	}

	daily, err := queryDailyDistribution(ctx)
	if err != nil {
		return analyticsError(c, "daily distribution", err)
	}

	return c.JSON(AnalyticsResponse{
		Success:            true,
		Overview:           overview,
		TopCountries:       topCountries,
		TopCities:          topCities,
		RecentActivity:     recent,
		HourlyDistribution: hourly,
		DailyDistribution:  daily,
	})
}

func analyticsError(c fiber.Ctx, stage string, err error) error {
	logging.L().Error("analytics query failed",
		zap.String("stage", stage), zap.Error(err))
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func queryOverview(ctx context.Context) (Overview, error) {
	var overview Overview
	var avgHours sql.NullFloat64
	var first, last sql.NullTime

	err := database.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as total_visits,
			COUNT(DISTINCT ip) as unique_visitors,
			COUNT(DISTINCT country) as countries_visited,
			COUNT(DISTINCT city) as cities_visited,
			AVG(EXTRACT(EPOCH FROM (NOW() - visit_time))/3600) as avg_hours_since_visit,
			MIN(visit_time) as first_visit,
			MAX(visit_time) as last_visit
		FROM visitor_info`).Scan(
		&overview.TotalVisits, &overview.UniqueVisitors,
		&overview.CountriesVisited, &overview.CitiesVisited,
		&avgHours, &first, &last)
	if err != nil {
		return Overview{}, err
	}

	if avgHours.Valid {
		overview.AvgHoursSinceVisit = &avgHours.Float64
	}
	if first.Valid {
		overview.FirstVisit = &first.Time
	}
	if last.Valid {
		overview.LastVisit = &last.Time
	}
	return overview, nil
}

func queryTopCountries(ctx context.Context) ([]CountryStat, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT
			country,
			COUNT(*) as visits,
			COUNT(DISTINCT ip) as unique_visitors
		FROM visitor_info
		WHERE country != 'Unknown'
		GROUP BY country
		ORDER BY visits DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := make([]CountryStat, 0)
	for rows.Next() {
		var stat CountryStat
		if err := rows.Scan(&stat.Country, &stat.Visits, &stat.UniqueVisitors); err != nil {
			return nil, err
		}
		stat.Code = countryCode(stat.Country)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func queryTopCities(ctx context.Context) ([]CityStat, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT
			city,
			COUNT(*) as visits,
			COUNT(DISTINCT ip) as unique_visitors
		FROM visitor_info
		WHERE city != 'Unknown'
		GROUP BY city
		ORDER BY visits DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := make([]CityStat, 0)
	for rows.Next() {
		var stat CityStat
		if err := rows.Scan(&stat.City, &stat.Visits, &stat.UniqueVisitors); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func queryRecentActivity(ctx context.Context) (RecentActivity, error) {
	var recent RecentActivity
	err := database.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as visits_last_24h,
			COUNT(DISTINCT ip) as unique_visitors_last_24h
		FROM visitor_info
		WHERE visit_time >= NOW() - INTERVAL '24 hours'`).Scan(
		&recent.VisitsLast24h, &recent.UniqueVisitorsLast24h)
	return recent, err
}

func queryHourlyDistribution(ctx context.Context) ([]HourlyBucket, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT
			CAST(EXTRACT(HOUR FROM visit_time) AS INT) as hour,
			COUNT(*) as visits
		FROM visitor_info
		WHERE visit_time >= NOW() - INTERVAL '24 hours'
		GROUP BY EXTRACT(HOUR FROM visit_time)
		ORDER BY hour`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	buckets := make([]HourlyBucket, 0)
	for rows.Next() {
		var bucket HourlyBucket
		if err := rows.Scan(&bucket.Hour, &bucket.Visits); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func queryDailyDistribution(ctx context.Context) ([]DailyBucket, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT
			DATE(visit_time) as date,
			COUNT(*) as visits,
			COUNT(DISTINCT ip) as unique_visitors
		FROM visitor_info
		WHERE visit_time >= NOW() - INTERVAL '7 days'
		GROUP BY DATE(visit_time)
		ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	buckets := make([]DailyBucket, 0)
	for rows.Next() {
		var day time.Time
		var bucket DailyBucket
		if err := rows.Scan(&day, &bucket.Visits, &bucket.UniqueVisitors); err != nil {
			return nil, err
		}
		bucket.Date = day.Format("2006-01-02")
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

// countryCode maps a stored country name to its ISO alpha-2 code; unknown
// names yield an empty code and the dashboard map simply skips them.
func countryCode(name string) string {
	code := countries.ByName(name)
	if code == countries.Unknown {
		return ""
	}
	return code.Alpha2()
}
