package handlers

import "time"

// VisitorRow is one recorded visit as returned by the data listing endpoint.
// Device/browser fields are recomputed from the stored user-agent at read
// time; whatever was persisted for them at write time is overwritten.
type VisitorRow struct {
	ID              int64     `json:"id"`
	IP              string    `json:"ip"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	ClientTimestamp time.Time `json:"client_timestamp"`
	Language        string    `json:"language"`
	Platform        string    `json:"platform"`
	UserAgent       string    `json:"user_agent"`
	Browser         string    `json:"browser"`
	Version         string    `json:"version"`
	OS              string    `json:"os"`
	Device          string    `json:"device"`
	IsVPN           bool      `json:"isVPN"`
	Referrer        string    `json:"referrer"`
	PageName        string    `json:"page_name"`
	Source          string    `json:"source"`
}

// Overview holds the whole-table aggregate counts.
type Overview struct {
	TotalVisits        int64      `json:"total_visits"`
	UniqueVisitors     int64      `json:"unique_visitors"`
	CountriesVisited   int64      `json:"countries_visited"`
	CitiesVisited      int64      `json:"cities_visited"`
	AvgHoursSinceVisit *float64   `json:"avg_hours_since_visit"`
	FirstVisit         *time.Time `json:"first_visit"`
	LastVisit          *time.Time `json:"last_visit"`
}

// CountryStat is one top-countries entry. Code carries the ISO 3166-1
// alpha-2 code so the dashboard map can join against TopoJSON.
type CountryStat struct {
	Country        string `json:"country"`
	Code           string `json:"code,omitempty"`
	Visits         int64  `json:"visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// CityStat is one top-cities entry.
type CityStat struct {
	City           string `json:"city"`
	Visits         int64  `json:"visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// RecentActivity holds last-24-hours totals.
type RecentActivity struct {
	VisitsLast24h         int64 `json:"visits_last_24h"`
	UniqueVisitorsLast24h int64 `json:"unique_visitors_last_24h"`
}

// HourlyBucket is one hour-of-day count within the last 24 hours.
type HourlyBucket struct {
	Hour   int   `json:"hour"`
	Visits int64 `json:"visits"`
}

// DailyBucket is one calendar-day count within the last 7 days.
type DailyBucket struct {
	Date           string `json:"date"`
	Visits         int64  `json:"visits"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// AnalyticsResponse is the full payload of the aggregation endpoint.
type AnalyticsResponse struct {
	Success            bool           `json:"success"`
	Overview           Overview       `json:"overview"`
	TopCountries       []CountryStat  `json:"topCountries"`
	TopCities          []CityStat     `json:"topCities"`
	RecentActivity     RecentActivity `json:"recentActivity"`
	HourlyDistribution []HourlyBucket `json:"hourlyDistribution"`
	DailyDistribution  []DailyBucket  `json:"dailyDistribution"`
}
