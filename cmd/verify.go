// File: cmd/verify.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autoscan-cli/internal/config"
	"github.com/xkilldash9x/autoscan-cli/internal/invoker"
	"github.com/xkilldash9x/autoscan-cli/internal/observability"
	"github.com/xkilldash9x/autoscan-cli/internal/platform"
	"github.com/xkilldash9x/autoscan-cli/internal/scenario"
	"github.com/xkilldash9x/autoscan-cli/internal/store"
)

// newVerifyCmd creates and configures the `verify` command.
func newVerifyCmd() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Runs both analyses and checks the differences against the approved baselines",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI flags override config
			// file and environment values.
			if err := viper.BindPFlag("project.key", cmd.Flags().Lookup("project")); err != nil {
				return err
			}
			if err := viper.BindPFlag("server.page_size", cmd.Flags().Lookup("page-size")); err != nil {
				return err
			}
			if err := viper.BindPFlag("analysis.skip", cmd.Flags().Lookup("skip-analysis")); err != nil {
				return err
			}
			if err := viper.BindPFlag("baseline.count_file", cmd.Flags().Lookup("baseline-count")); err != nil {
				return err
			}
			return viper.BindPFlag("baseline.report_file", cmd.Flags().Lookup("baseline-report"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Flags were bound in PreRunE; rebuild the config so the
			// overrides land with the right precedence.
			finalCfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if finalCfg.Project.Key == "" {
				return fmt.Errorf("project.key is required (set --project or the config file)")
			}

			client := platform.NewClient(finalCfg.Server, logger)
			collector := platform.NewCollector(client, finalCfg.Server.PageSize, logger)
			execInvoker := invoker.NewExecInvoker(logger)

			recorder, closePool, err := newRunRecorder(ctx, finalCfg, logger)
			if err != nil {
				return err
			}
			defer closePool()

			driver := scenario.NewDriver(finalCfg, execInvoker, collector, recorder, logger)
			res, err := driver.Verify(ctx)
			if err != nil {
				var mismatch *scenario.MismatchError
				if errors.As(err, &mismatch) {
					// The diff is the user-visible verdict; print it raw.
					fmt.Fprintln(cmd.OutOrStderr(), mismatch.Error())
					return fmt.Errorf("verification failed: %s mismatch", mismatch.Subject)
				}
				return err
			}

			logger.Info("Verification passed",
				zap.String("runID", res.RunID),
				zap.Int("differences", res.DifferenceCount),
				zap.Int("rules", res.Report.RuleCount()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Verification passed: %d differences across %d rules\n",
				res.DifferenceCount, res.Report.RuleCount())
			return nil
		},
	}

	verifyCmd.Flags().String("project", "", "key of the project under verification")
	verifyCmd.Flags().Int("page-size", 500, "issues requested per search page")
	verifyCmd.Flags().Bool("skip-analysis", false, "skip the external analysis runs and only verify server state")
	verifyCmd.Flags().String("baseline-count", "", "path of the approved raw difference count file")
	verifyCmd.Flags().String("baseline-report", "", "path of the approved per-rule report file")

	return verifyCmd
}

// newRunRecorder opens the optional Postgres history store. Returns a nil
// recorder when history is not configured.
func newRunRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (scenario.RunRecorder, func(), error) {
	if cfg.History.DatabaseURL == "" {
		return nil, func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.History.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool.Close, nil
}
