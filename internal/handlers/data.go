package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/logging"
	"github.com/mzizi/wageni/internal/ua"
)

// HandleDataListing returns every recorded visit, newest first. The SELECT
// is assembled against the table's actual columns so rows written by older
// handler revisions still list; browser/device classification is always
// recomputed from the stored user-agent.
// GET /api/data
func HandleDataListing(c fiber.Ctx) error {
	ctx := c.Context()

	cols, err := database.Resolver.Columns(ctx)
	if err != nil {
		logging.L().Error("failed to resolve visitor columns", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	query := database.BuildVisitorSelect(cols)
	rows, err := database.DB.QueryContext(ctx, query)
	if err != nil {
		logging.L().Error("failed to query visitor rows", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	defer func() { _ = rows.Close() }()

	visitors := make([]VisitorRow, 0)
	for rows.Next() {
		var row VisitorRow
		if err := rows.Scan(
			&row.ID, &row.IP, &row.Country, &row.City, &row.State,
			&row.ClientTimestamp, &row.Language, &row.Platform,
			&row.UserAgent, &row.Browser, &row.Version, &row.OS,
			&row.Device, &row.Referrer, &row.PageName, &row.IsVPN,
		); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}

		info := ua.Classify(row.UserAgent)
		row.Browser = info.Browser
		row.Version = info.Version
		row.OS = info.OS
		row.Platform = info.Platform
		row.Device = info.Device
		row.IsVPN = info.IsVPN
		row.Source = info.Source

		visitors = append(visitors, row)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(visitors)
}
