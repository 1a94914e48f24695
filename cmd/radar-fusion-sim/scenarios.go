package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"radar-fusion-sim/internal/scenario"
)

var scenariosFile string

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := scenario.BuiltIn()
		if scenariosFile != "" {
			if err := catalog.LoadInto(scenariosFile); err != nil {
				return err
			}
		}
		return printScenarios(cmd.OutOrStdout(), catalog)
	},
}

func init() {
	scenariosCmd.Flags().StringVar(&scenariosFile, "file", "", "YAML file with additional scenarios")
}

func printScenarios(out io.Writer, c *scenario.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGROUPS\tDESCRIPTION")
	for _, name := range c.Names() {
		s, err := c.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Name, len(s.Groups), s.Description)
	}
	return tw.Flush()
}
