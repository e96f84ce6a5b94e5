package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mzizi/wageni/internal/geo"
)

// Geo is the shared geolocation client, configured at startup. Tests swap it
// for one pointing at local stub servers.
var Geo = geo.NewClient("", "", nil)

// Configure wires the handlers' external collaborators.
func Configure(geoClient *geo.Client) {
	if geoClient != nil {
		Geo = geoClient
	}
}

// clientIP resolves the client address from forwarding headers in fixed
// precedence, falling back to the loopback literal for direct local calls.
func clientIP(c fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return strings.TrimSpace(cfIP)
	}
	return "127.0.0.1"
}
