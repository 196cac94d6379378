package cmd

import (
	"fmt"
	"os"

	"convoy/internal/api"
	"convoy/internal/cli"
	"convoy/internal/config"
	"convoy/internal/coordinator"
	"convoy/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	planStrategy string
	planManifest string
	planProject  string
	planOutput   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the batched deployment plan without deploying",
	Long: `Validates the services manifest and prints the deployment batches
the chosen strategy would produce. Nothing is deployed.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.LevelWarn, false)

	if err := cli.ValidateOutputFormat(planOutput); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(planProject)
	if err != nil {
		return err
	}
	strategy := cfg.Strategy
	if cmd.Flags().Changed("strategy") {
		strategy = api.Strategy(planStrategy)
	}

	manifestPath := planManifest
	if manifestPath == "" {
		manifestPath = config.DefaultManifestPath(planProject)
	}
	services, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	if validation := coordinator.ValidateServices(services); !validation.Valid {
		if planOutput == string(cli.OutputFormatTable) {
			cli.NewRenderer(os.Stdout).RenderIssues(validation.Issues)
		}
		return api.NewValidationError(validation.Issues...)
	}

	batches, err := coordinator.PlanBatches(services, strategy)
	if err != nil {
		return err
	}

	switch cli.OutputFormat(planOutput) {
	case cli.OutputFormatJSON:
		return cli.PrintJSON(os.Stdout, map[string]interface{}{"strategy": strategy, "batches": batches})
	case cli.OutputFormatYAML:
		return cli.PrintYAML(os.Stdout, map[string]interface{}{"strategy": strategy, "batches": batches})
	default:
		fmt.Printf("Deployment plan (%s):\n", strategy)
		cli.NewRenderer(os.Stdout).RenderPlan(batches)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planStrategy, "strategy", "", "Batch strategy: sequential, parallel or dependency-order (default from config)")
	planCmd.Flags().StringVar(&planManifest, "manifest", "", "Services manifest path (default .convoy/services.yaml)")
	planCmd.Flags().StringVar(&planProject, "project", ".", "Project directory holding the .convoy state")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "table", "Output format: table, json or yaml")
}
