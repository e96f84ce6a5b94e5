package client

import "time"

// Metrics are the dashboard's summary figures derived from one fetched
// listing.
type Metrics struct {
	TotalVisits       int    `json:"totalVisits"`
	UniqueVisitors    int    `json:"uniqueVisitors"`
	TopCountry        string `json:"topCountry"`
	TopCity           string `json:"topCity"`
	TopBrowser        string `json:"topBrowser"`
	TopBrowserVersion string `json:"topBrowserVersion"`
	TopOS             string `json:"topOS"`
	TopDevice         string `json:"topDevice"`
	TopLanguage       string `json:"topLanguage"`
	TopPlatform       string `json:"topPlatform"`
	VPNVisits         int    `json:"vpnVisits"`
	RecentActivity    int    `json:"recentActivity"`
}

// DeriveMetrics computes the summary figures from the fetched rows. Recent
// activity counts visits within the hour before now. Most-frequent values
// break ties by encounter order, so the value seen first wins.
func DeriveMetrics(visitors []Visitor, now time.Time) Metrics {
	metrics := Metrics{TotalVisits: len(visitors)}
	if len(visitors) == 0 {
		return metrics
	}

	seen := make(map[string]bool, len(visitors))
	countries := newFrequency()
	cities := newFrequency()
	browsers := newFrequency()
	versions := newFrequency()
	oses := newFrequency()
	devices := newFrequency()
	languages := newFrequency()
	platforms := newFrequency()

	hourAgo := now.Add(-time.Hour)
	for _, v := range visitors {
		if !seen[v.IP] {
			seen[v.IP] = true
			metrics.UniqueVisitors++
		}

		countries.add(v.Country)
		cities.add(v.City)
		browsers.add(v.Browser)
		versions.add(v.Version)
		oses.add(v.OS)
		devices.add(v.Device)
		languages.add(v.Language)
		platforms.add(v.Platform)

		if v.IsVPN {
			metrics.VPNVisits++
		}
		if v.ClientTimestamp.After(hourAgo) {
			metrics.RecentActivity++
		}
	}

	metrics.TopCountry = countries.top()
	metrics.TopCity = cities.top()
	metrics.TopBrowser = browsers.top()
	metrics.TopBrowserVersion = versions.top()
	metrics.TopOS = oses.top()
	metrics.TopDevice = devices.top()
	metrics.TopLanguage = languages.top()
	metrics.TopPlatform = platforms.top()
	return metrics
}

// frequency counts values while remembering encounter order for ties.
type frequency struct {
	counts map[string]int
	order  []string
}

func newFrequency() *frequency {
	return &frequency{counts: make(map[string]int)}
}

func (f *frequency) add(value string) {
	if value == "" {
		return
	}
	if _, ok := f.counts[value]; !ok {
		f.order = append(f.order, value)
	}
	f.counts[value]++
}

func (f *frequency) top() string {
	best := ""
	bestCount := 0
	for _, value := range f.order {
		if f.counts[value] > bestCount {
			best = value
			bestCount = f.counts[value]
		}
	}
	return best
}
