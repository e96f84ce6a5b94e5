package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveMetrics_Empty(t *testing.T) {
	metrics := DeriveMetrics(nil, time.Now())
	assert.Equal(t, 0, metrics.TotalVisits)
	assert.Equal(t, 0, metrics.UniqueVisitors)
	assert.Equal(t, "", metrics.TopCountry)
	assert.Equal(t, 0, metrics.RecentActivity)
}

func TestDeriveMetrics_Counts(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	visitors := []Visitor{
		{IP: "1.1.1.1", Country: "Kenya", City: "Nairobi", Browser: "Chrome", Version: "120", OS: "Windows", Device: "Desktop", Language: "en-US", Platform: "Unknown", ClientTimestamp: now.Add(-10 * time.Minute)},
		{IP: "1.1.1.1", Country: "Kenya", City: "Nairobi", Browser: "Chrome", Version: "120", OS: "Windows", Device: "Desktop", Language: "en-US", Platform: "Unknown", ClientTimestamp: now.Add(-30 * time.Minute)},
		{IP: "2.2.2.2", Country: "Germany", City: "Berlin", Browser: "Firefox", Version: "118", OS: "Linux", Device: "Mobile", Language: "de-DE", Platform: "Unknown", IsVPN: true, ClientTimestamp: now.Add(-2 * time.Hour)},
	}

	metrics := DeriveMetrics(visitors, now)
	assert.Equal(t, 3, metrics.TotalVisits)
	assert.Equal(t, 2, metrics.UniqueVisitors)
	assert.Equal(t, "Kenya", metrics.TopCountry)
	assert.Equal(t, "Nairobi", metrics.TopCity)
	assert.Equal(t, "Chrome", metrics.TopBrowser)
	assert.Equal(t, "120", metrics.TopBrowserVersion)
	assert.Equal(t, "Windows", metrics.TopOS)
	assert.Equal(t, "Desktop", metrics.TopDevice)
	assert.Equal(t, "en-US", metrics.TopLanguage)
	assert.Equal(t, 1, metrics.VPNVisits)
	assert.Equal(t, 2, metrics.RecentActivity)
}

func TestDeriveMetrics_TiesBreakByEncounterOrder(t *testing.T) {
	now := time.Now()
	visitors := []Visitor{
		{IP: "1.1.1.1", Country: "Germany", Browser: "Firefox"},
		{IP: "2.2.2.2", Country: "Kenya", Browser: "Chrome"},
		{IP: "3.3.3.3", Country: "Kenya", Browser: "Firefox"},
		{IP: "4.4.4.4", Country: "Germany", Browser: "Chrome"},
	}

	metrics := DeriveMetrics(visitors, now)
	assert.Equal(t, "Germany", metrics.TopCountry)
	assert.Equal(t, "Firefox", metrics.TopBrowser)
}
