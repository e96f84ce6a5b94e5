package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mzizi/wageni/internal/config"
	"github.com/mzizi/wageni/internal/database"
	"github.com/mzizi/wageni/internal/geo"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on a wageni installation",
	Long: `Run health checks on a wageni installation.

Checks performed:
  - DATABASE_URL configured
  - Database connection
  - Migration history
  - Visitor table exists and is readable
  - Geolocation services reachable

Example:
  wageni doctor
  wageni doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "emit results as JSON")
	RootCmd.AddCommand(doctorCmd)
}

// CheckResult is one doctor check outcome.
type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	results := []CheckResult{
		checkDatabaseURL(cfg),
		checkDatabaseConnection(cfg),
		checkMigrations(cfg),
		checkVisitorTable(ctx, cfg),
		checkGeoService(ctx, "primary geolocation service", cfg.GeoPrimaryURL, cfg.GeoFallbackURL),
	}

	if doctorJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	failed := 0
	for _, result := range results {
		if result.Pass {
			pterm.Success.Println(result.Name)
			if result.Details != "" {
				pterm.Info.Println("  " + result.Details)
			}
			continue
		}
		failed++
		pterm.Error.Printfln("%s: %s", result.Name, result.Error)
		if result.Suggestion != "" {
			pterm.Info.Println("  " + result.Suggestion)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	pterm.Success.Printfln("All %d checks passed", len(results))
	return nil
}

func checkDatabaseURL(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "DATABASE_URL configured"}
	if cfg.DatabaseURL == "" {
		result.Error = "no connection string found"
		result.Suggestion = `Set DATABASE_URL or database_url in wageni.toml`
		return result
	}
	result.Pass = true
	return result
}

func checkDatabaseConnection(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "Database connection"}
	if cfg.DatabaseURL == "" {
		result.Error = "skipped: no connection string"
		return result
	}
	if err := database.ConnectURL(cfg.DatabaseURL); err != nil {
		result.Error = err.Error()
		result.Suggestion = "Verify the connection string and that PostgreSQL is running"
		return result
	}
	result.Pass = true
	return result
}

func checkMigrations(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "Migration history"}
	if cfg.DatabaseURL == "" {
		result.Error = "skipped: no connection string"
		return result
	}
	version, dirty, err := database.GetMigrationVersion(cfg.DatabaseURL)
	if err != nil {
		result.Error = err.Error()
		result.Suggestion = "Run the server once to apply migrations, or check migration state manually"
		return result
	}
	if dirty {
		result.Error = fmt.Sprintf("migration version %d is dirty", version)
		result.Suggestion = "A migration failed halfway; inspect the schema_migrations table"
		return result
	}
	result.Pass = true
	result.Details = fmt.Sprintf("at version %d", version)
	return result
}

func checkVisitorTable(ctx context.Context, cfg *config.Config) CheckResult {
	result := CheckResult{Name: "Visitor table readable"}
	if database.DB == nil {
		result.Error = "skipped: not connected"
		return result
	}
	var total int64
	err := database.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+database.VisitorTable).Scan(&total)
	if err != nil {
		result.Error = err.Error()
		result.Suggestion = "The table is created on first tracked visit; this is expected on a fresh database"
		return result
	}
	result.Pass = true
	result.Details = fmt.Sprintf("%d rows", total)
	return result
}

func checkGeoService(ctx context.Context, name, primaryURL, fallbackURL string) CheckResult {
	result := CheckResult{Name: name}
	geoc := geo.NewClient(primaryURL, fallbackURL, nil)

	// 8.8.8.8 is public and stable; a lookup that degrades all the way to
	// Unknown means neither service answered.
	location := geoc.Lookup(ctx, "8.8.8.8")
	if location == geo.Unknown {
		result.Error = "both lookup services failed"
		result.Suggestion = "Check outbound network access to " + primaryURL + " and " + fallbackURL
		return result
	}
	result.Pass = true
	result.Details = "resolved 8.8.8.8 to " + location.Country
	return result
}
