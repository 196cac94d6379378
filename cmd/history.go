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
	historyEnv     string
	historyStatus  string
	historyLimit   int
	historyOffset  int
	historyProject string
	historyOutput  string
	historyRelease string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored releases, newest first",
	Long: `Lists releases from the durable release history with optional
environment and status filters and pagination. With --release a single
release record is shown in full.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.LevelWarn, false)

	if err := cli.ValidateOutputFormat(historyOutput); err != nil {
		return err
	}

	reg := registry.New(historyProject)

	if historyRelease != "" {
		record, err := reg.GetRelease(cmd.Context(), historyRelease)
		if err != nil {
			return err
		}
		switch cli.OutputFormat(historyOutput) {
		case cli.OutputFormatYAML:
			return cli.PrintYAML(os.Stdout, record)
		default:
			return cli.PrintJSON(os.Stdout, record)
		}
	}

	list, err := reg.ListReleases(cmd.Context(), registry.ListFilter{
		Environment: api.Environment(historyEnv),
		Status:      api.ReleaseStatus(historyStatus),
		Limit:       historyLimit,
		Offset:      historyOffset,
	})
	if err != nil {
		return err
	}

	switch cli.OutputFormat(historyOutput) {
	case cli.OutputFormatJSON:
		return cli.PrintJSON(os.Stdout, list)
	case cli.OutputFormatYAML:
		return cli.PrintYAML(os.Stdout, list)
	default:
		cli.NewRenderer(os.Stdout).RenderHistory(list)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyEnv, "env", "", "Keep only releases for this environment")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Keep only releases in this state")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Page size (default 50, max 1000)")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Releases to skip from the newest end")
	historyCmd.Flags().StringVar(&historyRelease, "release", "", "Show one release record in full by id")
	historyCmd.Flags().StringVar(&historyProject, "project", ".", "Project directory holding the .convoy state")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "Output format: table, json or yaml")
}
