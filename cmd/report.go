// File: cmd/report.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
	"github.com/xkilldash9x/autoscan-cli/internal/config"
	"github.com/xkilldash9x/autoscan-cli/internal/diff"
	"github.com/xkilldash9x/autoscan-cli/internal/observability"
	"github.com/xkilldash9x/autoscan-cli/internal/platform"
)

// newReportCmd creates the `report` command: collect the project's open
// issues and print the per-rule difference report without asserting
// anything. Useful for regenerating baselines after an approved change.
func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Prints the per-rule difference report for a project's open issues",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("project.key", cmd.Flags().Lookup("project")); err != nil {
				return err
			}
			return viper.BindPFlag("server.page_size", cmd.Flags().Lookup("page-size"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			finalCfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if finalCfg.Project.Key == "" {
				return fmt.Errorf("project.key is required (set --project or the config file)")
			}

			client := platform.NewClient(finalCfg.Server, logger)
			collector := platform.NewCollector(client, finalCfg.Server.PageSize, logger)

			issues, err := collector.CollectAll(ctx, finalCfg.Project.Key, schemas.StatusOpen)
			if err != nil {
				return err
			}
			report, err := diff.Aggregate(issues)
			if err != nil {
				return err
			}
			rendered := report.Render()

			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "stdout" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				return nil
			}
			if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("failed to write report to %s: %w", output, err)
			}
			return nil
		},
	}

	reportCmd.Flags().String("project", "", "key of the project to report on")
	reportCmd.Flags().Int("page-size", 500, "issues requested per search page")
	reportCmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")

	return reportCmd
}
