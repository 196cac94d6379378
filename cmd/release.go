package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"convoy/internal/api"
	"convoy/internal/cli"
	"convoy/internal/config"
	"convoy/internal/coordinator"
	"convoy/internal/executor"
	"convoy/internal/notes"
	"convoy/internal/registry"
	"convoy/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	releaseEnv               string
	releaseName              string
	releaseStrategy          string
	releaseRollbackOnFailure bool
	releaseTimeout           time.Duration
	releaseMaxConcurrent     int
	releaseManifest          string
	releaseProject           string
	releaseDryRun            bool
	releaseOutput            string
	releaseQuiet             bool
	releaseDebug             bool
)

// releaseFailedError marks a release that ran but did not succeed, so the
// process can exit with a dedicated code.
type releaseFailedError struct {
	result *api.CoordinateResult
}

func (e *releaseFailedError) Error() string {
	return fmt.Sprintf("release %s did not succeed", e.result.ReleaseID)
}

func isReleaseFailed(err error) bool {
	var r *releaseFailedError
	return errors.As(err, &r)
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run a coordinated multi-service release",
	Long: `Validates the services manifest, plans deployment batches for the
chosen strategy, deploys batch by batch and records the outcome in the
release history.

Services come from the manifest (.convoy/services.yaml by default).
Defaults for environment, strategy and timeouts come from
.convoy/config.yaml; flags override them.

Exit codes: 0 success, 2 validation failure, 3 release failed or rolled
back, 1 anything else.`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func runRelease(cmd *cobra.Command, args []string) error {
	level := logging.LevelWarn
	if releaseDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, releaseQuiet && !releaseDebug)

	if err := cli.ValidateOutputFormat(releaseOutput); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(releaseProject)
	if err != nil {
		return err
	}
	applyReleaseFlagOverrides(cmd, &cfg)

	manifestPath := releaseManifest
	if manifestPath == "" {
		manifestPath = config.DefaultManifestPath(releaseProject)
	}
	services, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	reg := registry.New(releaseProject)
	if err := reg.Initialize(); err != nil {
		return err
	}

	var exec api.DeploymentExecutor
	if releaseDryRun {
		exec = executor.NewSimulatedExecutor()
	} else {
		exec = executor.NewCommandExecutor(executor.CommandConfig{
			DeployCommand:   cfg.Executor.DeployCommand,
			RollbackCommand: cfg.Executor.RollbackCommand,
		})
	}

	generator, err := notes.New(releaseProject, cfg.Notes.Template)
	if err != nil {
		return err
	}

	coord, err := coordinator.New(coordinator.Config{
		Registry:       reg,
		Executor:       exec,
		Notes:          generator,
		MaxConcurrent:  cfg.MaxConcurrent,
		ServiceTimeout: time.Duration(cfg.ServiceTimeout),
	})
	if err != nil {
		return err
	}

	progress := cli.NewProgress(releaseQuiet || releaseOutput != string(cli.OutputFormatTable))
	label := fmt.Sprintf("Releasing %d services to %s...", len(services), cfg.Environment)
	if releaseDryRun {
		label = fmt.Sprintf("Simulating release of %d services to %s...", len(services), cfg.Environment)
	}
	progress.Start(label)

	result, err := coord.CoordinateRelease(cmd.Context(), api.CoordinateParams{
		ReleaseName:       releaseName,
		Environment:       cfg.Environment,
		Services:          services,
		Strategy:          cfg.Strategy,
		RollbackOnFailure: cfg.RollbackOnFailure,
	})
	if err != nil {
		progress.Fail("Release rejected")
		var validationErr *api.ValidationError
		if errors.As(err, &validationErr) && releaseOutput == string(cli.OutputFormatTable) {
			cli.NewRenderer(os.Stdout).RenderIssues(validationErr.Issues)
		}
		return err
	}

	if result.Success {
		progress.Succeed(fmt.Sprintf("Release %s succeeded", result.ReleaseID))
	} else {
		progress.Fail(fmt.Sprintf("Release %s did not succeed", result.ReleaseID))
	}

	switch cli.OutputFormat(releaseOutput) {
	case cli.OutputFormatJSON:
		if err := cli.PrintJSON(os.Stdout, result); err != nil {
			return err
		}
	case cli.OutputFormatYAML:
		if err := cli.PrintYAML(os.Stdout, result); err != nil {
			return err
		}
	default:
		cli.NewRenderer(os.Stdout).RenderResults(result)
	}

	if !result.Success {
		return &releaseFailedError{result: result}
	}
	return nil
}

// applyReleaseFlagOverrides lets explicitly set flags win over config file
// values. Unset flags keep the config defaults.
func applyReleaseFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("env") {
		cfg.Environment = api.Environment(releaseEnv)
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = api.Strategy(releaseStrategy)
	}
	if cmd.Flags().Changed("rollback-on-failure") {
		cfg.RollbackOnFailure = releaseRollbackOnFailure
	}
	if cmd.Flags().Changed("timeout") {
		cfg.ServiceTimeout = config.Duration(releaseTimeout)
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent = releaseMaxConcurrent
	}
}

func init() {
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().StringVar(&releaseEnv, "env", "", "Target environment: staging or production (default from config)")
	releaseCmd.Flags().StringVar(&releaseName, "name", "", "Human-readable label stored on the release record")
	releaseCmd.Flags().StringVar(&releaseStrategy, "strategy", "", "Batch strategy: sequential, parallel or dependency-order (default from config)")
	releaseCmd.Flags().BoolVar(&releaseRollbackOnFailure, "rollback-on-failure", false, "Roll back already deployed services when a later service fails")
	releaseCmd.Flags().DurationVar(&releaseTimeout, "timeout", 0, "Per-service deploy and rollback timeout (default from config)")
	releaseCmd.Flags().IntVar(&releaseMaxConcurrent, "max-concurrent", 0, "Bound concurrent deployments within one batch (0 = batch-wide)")
	releaseCmd.Flags().StringVar(&releaseManifest, "manifest", "", "Services manifest path (default .convoy/services.yaml)")
	releaseCmd.Flags().StringVar(&releaseProject, "project", ".", "Project directory holding the .convoy state")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Simulate deployments instead of running deploy commands")
	releaseCmd.Flags().StringVarP(&releaseOutput, "output", "o", "table", "Output format: table, json or yaml")
	releaseCmd.Flags().BoolVarP(&releaseQuiet, "quiet", "q", false, "Suppress progress output")
	releaseCmd.Flags().BoolVar(&releaseDebug, "debug", false, "Enable debug logging")
}
