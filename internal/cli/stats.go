package cli

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mzizi/wageni/internal/client"
	"github.com/mzizi/wageni/internal/config"
	"github.com/mzizi/wageni/internal/geo"
)

var statsServerURL string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary metrics from a running server",
	Long: `Fetch the visitor listing from a running wageni server and print the
summary metrics the dashboard derives from it.

Example:
  wageni stats --url http://localhost:3000`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsServerURL, "url", "http://localhost:3000", "base URL of the wageni server")
	RootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	geoc := geo.NewClient(cfg.GeoPrimaryURL, cfg.GeoFallbackURL, nil)
	hook := client.NewHook(statsServerURL, nil, geoc, geo.NewCache(), cfg.FetchTimeout)

	spinner, _ := pterm.DefaultSpinner.Start("Fetching visitor data...")
	snapshot, err := hook.Fetch(cmd.Context())
	if err != nil {
		spinner.Fail(fmt.Sprintf("Fetch failed: %v", err))
		return err
	}
	spinner.Success(fmt.Sprintf("Fetched %d visits", snapshot.Metrics.TotalVisits))

	m := snapshot.Metrics
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Total visits", strconv.Itoa(m.TotalVisits)},
		{"Unique visitors", strconv.Itoa(m.UniqueVisitors)},
		{"Top country", orDash(m.TopCountry)},
		{"Top city", orDash(m.TopCity)},
		{"Top browser", orDash(m.TopBrowser)},
		{"Top browser version", orDash(m.TopBrowserVersion)},
		{"Top OS", orDash(m.TopOS)},
		{"Top device", orDash(m.TopDevice)},
		{"Top language", orDash(m.TopLanguage)},
		{"Top platform", orDash(m.TopPlatform)},
		{"VPN visits", strconv.Itoa(m.VPNVisits)},
		{"Visits in last hour", strconv.Itoa(m.RecentActivity)},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
