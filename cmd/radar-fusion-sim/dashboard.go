package main

import (
	"github.com/spf13/cobra"

	"radar-fusion-sim/internal/dashboard"
)

var (
	dashboardOut  string
	dashboardSite string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the GreptimeDB tables",
	Long:  "dashboard renders the Grafana dashboards into a directory. GREPTIMEDB_DATASOURCE_UID must name the Grafana data source.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboard.Render(dashboardOut, dashboard.DefaultTables(dashboardSite))
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
	dashboardCmd.Flags().StringVar(&dashboardSite, "site", "site-01", "Site id the panels filter on")
}
