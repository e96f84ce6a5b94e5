package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/logging"
	"github.com/mzizi/wageni/internal/ua"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// VisitPayload is the optional body of a tracking call. Every field may be
// absent; the tracker script sends page, timestamp, language and referrer.
type VisitPayload struct {
	UserAgent string `json:"userAgent" validate:"omitempty,max=500"`
	Page      string `json:"page" validate:"omitempty,max=200"`
	Timestamp string `json:"timestamp" validate:"omitempty"`
	Language  string `json:"language" validate:"omitempty,max=50"`
	Referrer  string `json:"referrer" validate:"omitempty,max=2000"`
}

// HandleTrackVisit records one visit.
// POST /api/visitor
func HandleTrackVisit(c fiber.Ctx) error {
	var payload VisitPayload
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&payload); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON payload"})
		}
	}
	if err := validate.Struct(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	ip := clientIP(c)
	location := Geo.Lookup(c.Context(), ip)

	agent := payload.UserAgent
	if agent == "" {
		agent = c.Get("User-Agent")
	}
	if agent == "" {
		agent = "Unknown"
	}
	info := ua.Classify(agent)

	ctx := c.Context()
	if err := database.EnsureVisitorTable(ctx); err != nil {
		logging.L().Error("failed to ensure visitor table", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	// The table may have just been created; the read path re-inspects it.
	database.Resolver.Invalidate()

	visitTime := parseClientTimestamp(payload.Timestamp)

	row := VisitorRow{
		IP:        ip,
		Country:   location.Country,
		City:      location.City,
		State:     location.State,
		Device:    info.Device,
		Browser:   info.Browser,
		Version:   info.Version,
		OS:        info.OS,
		Platform:  info.Platform,
		UserAgent: agent,
		Language:  orDefault(payload.Language, "Unknown"),
		Referrer:  orDefault(payload.Referrer, "Direct"),
		PageName:  orDefault(payload.Page, "Unknown"),
		IsVPN:     info.IsVPN,
		Source:    agent,
	}

	insert := `
		INSERT INTO visitor_info (
			ip, country, city, state, device, browser, version, os,
			platform, user_agent, language, referrer, page_name, is_vpn,
			visit_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			COALESCE($15, NOW())
		) RETURNING id, visit_time`

	err := database.DB.QueryRowContext(ctx, insert,
		row.IP, row.Country, row.City, row.State, row.Device, row.Browser,
		row.Version, row.OS, row.Platform, row.UserAgent, row.Language,
		row.Referrer, row.PageName, row.IsVPN, visitTime,
	).Scan(&row.ID, &row.ClientTimestamp)
	if err != nil {
		logging.L().Error("failed to insert visitor row",
			zap.String("ip", ip), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"visitor":     row,
		"geolocation": location,
		"device":      info.Device,
		"version":     info.Version,
	})
}

// HandleVisitorLookup resolves the caller's IP and location without writing
// a row.
// GET /api/visitor
func HandleVisitorLookup(c fiber.Ctx) error {
	ip := clientIP(c)
	location := Geo.Lookup(c.Context(), ip)

	return c.JSON(fiber.Map{
		"ip":          ip,
		"geolocation": location,
	})
}

// parseClientTimestamp accepts an RFC3339 timestamp from the tracker; nil
// means "use write-time now" via the statement's COALESCE.
func parseClientTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
