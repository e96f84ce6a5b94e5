package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/logging"
)

// ColumnInfo describes one column of the visitor table as reported by
// information_schema.
type ColumnInfo struct {
	Name     string  `json:"column_name"`
	DataType string  `json:"data_type"`
	Nullable string  `json:"is_nullable"`
	Default  *string `json:"column_default"`
}

// HandleSchema reports the visitor table's live column layout.
// GET /api/schema
func HandleSchema(c fiber.Ctx) error {
	ctx := c.Context()

	rows, err := database.DB.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`, database.VisitorTable)
	if err != nil {
		logging.L().Error("schema introspection failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	defer func() { _ = rows.Close() }()

	columns := make([]ColumnInfo, 0)
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.Default); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"table":   database.VisitorTable,
		"exists":  len(columns) > 0,
		"columns": columns,
	})
}

// HandleTestDB checks connectivity and returns a small sample of rows with
// whatever columns the table actually has. Cells are scanned generically so
// the endpoint works against legacy layouts too.
// GET /api/test-db
func HandleTestDB(c fiber.Ctx) error {
	ctx := c.Context()

	if err := database.DB.PingContext(ctx); err != nil {
		logging.L().Error("database ping failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	var total int64
	if err := database.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visitor_info`).Scan(&total); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := database.DB.QueryContext(ctx,
		`SELECT * FROM visitor_info ORDER BY visit_time DESC LIMIT 5`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	sample := make([]map[string]any, 0, 5)
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}

		record := make(map[string]any, len(names))
		for i, name := range names {
			if b, ok := cells[i].([]byte); ok {
				record[name] = string(b)
			} else {
				record[name] = cells[i]
			}
		}
		sample = append(sample, record)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"total_rows":  total,
		"sample_rows": sample,
	})
}
