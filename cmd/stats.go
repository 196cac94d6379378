package cmd

import (
	"os"

	"convoy/internal/api"
	"convoy/internal/cli"
	"convoy/internal/registry"
	"convoy/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	statsEnv     string
	statsProject string
	statsOutput  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show release statistics",
	Long: `Derives success rate, average duration and per-state counts from the
stored release history. Restrict to one environment with --env.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.LevelWarn, false)

	if err := cli.ValidateOutputFormat(statsOutput); err != nil {
		return err
	}

	reg := registry.New(statsProject)
	stats, err := reg.GetStatistics(cmd.Context(), api.Environment(statsEnv))
	if err != nil {
		return err
	}

	switch cli.OutputFormat(statsOutput) {
	case cli.OutputFormatJSON:
		return cli.PrintJSON(os.Stdout, stats)
	case cli.OutputFormatYAML:
		return cli.PrintYAML(os.Stdout, stats)
	default:
		cli.NewRenderer(os.Stdout).RenderStatistics(stats)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsEnv, "env", "", "Restrict statistics to one environment")
	statsCmd.Flags().StringVar(&statsProject, "project", ".", "Project directory holding the .convoy state")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table", "Output format: table, json or yaml")
}
