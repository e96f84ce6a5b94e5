package cli

import (
	"github.com/spf13/cobra"
)

// Version is set by Execute from the embedded VERSION file.
var Version string

// Embedded assets passed from main.
var (
	DashboardHTML []byte
	TrackerScript []byte
)

// RootCmd is the top-level command. Running the binary with no subcommand
// starts the server.
var RootCmd = &cobra.Command{
	Use:   "wageni",
	Short: "Visitor analytics without bloat",
	Long: `Wageni - a lightweight visitor analytics dashboard.

Wageni records page visits with IP geolocation and user-agent
classification into a single Postgres table and serves aggregate
views over it.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServer()
		}
		return cmd.Help()
	},
}

// Execute is called by main with the embedded assets.
func Execute(version string, dashboardHTML, trackerScript []byte) error {
	Version = version
	DashboardHTML = dashboardHTML
	TrackerScript = trackerScript

	RootCmd.Version = version
	return RootCmd.Execute()
}
