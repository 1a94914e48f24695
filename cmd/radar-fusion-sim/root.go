package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "radar-fusion-sim",
	Short: "Multi-node radar fusion simulator",
	Long:  "radar-fusion-sim simulates a tiered radar network, fuses the detections of its nodes into one air picture and exports the results.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(dashboardCmd)
}
