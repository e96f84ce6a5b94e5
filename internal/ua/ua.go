// Package ua classifies raw user-agent strings into browser, OS, platform
// and a coarse device category. Classification is pure: no network calls, no
// state, and the same input always produces the same output.
package ua

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Info is the structured classification of one user-agent string.
type Info struct {
	Browser  string `json:"browser"`
	Version  string `json:"version"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Device   string `json:"device"`
	IsVPN    bool   `json:"isVPN"`
	Source   string `json:"source"`
}

// Classify parses raw into an Info. Empty input and the literal "Unknown"
// map every field to "Unknown".
func Classify(raw string) Info {
	if raw == "" || raw == "Unknown" {
		return Info{
			Browser:  "Unknown",
			Version:  "Unknown",
			OS:       "Unknown",
			Platform: "Unknown",
			Device:   "Unknown",
			IsVPN:    detectVPN(),
			Source:   orUnknown(raw),
		}
	}

	parsed := useragent.Parse(raw)
	return Info{
		Browser:  orUnknown(parsed.Name),
		Version:  orUnknown(parsed.Version),
		OS:       orUnknown(parsed.OS),
		Platform: orUnknown(parsed.Device),
		Device:   DetectDevice(raw),
		IsVPN:    detectVPN(),
		Source:   raw,
	}
}

// DetectDevice buckets the raw string into Mobile, Tablet, TV or Desktop by
// ordered case-insensitive substring matching. First matching rule wins.
func DetectDevice(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") ||
		strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad"):
		return "Mobile"
	case strings.Contains(lower, "tablet"):
		return "Tablet"
	case strings.Contains(lower, "tv") || strings.Contains(lower, "smart-tv"):
		return "TV"
	default:
		return "Desktop"
	}
}

// detectVPN is a placeholder. No detection logic exists; every visit is
// reported as not using a VPN.
func detectVPN() bool {
	return false
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
