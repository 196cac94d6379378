package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"convoy/internal/api"
	"convoy/internal/cli"
	"convoy/internal/config"
	"convoy/internal/coordinator"
	"convoy/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	validateManifest string
	validateProject  string
	validateOutput   string
	validateWatch    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the services manifest",
	Long: `Checks the services manifest for duplicate names, self dependencies,
missing dependencies and dependency cycles. Every issue is reported, not
just the first.

With --watch the manifest is re-validated whenever the file changes,
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.LevelWarn, false)

	if err := cli.ValidateOutputFormat(validateOutput); err != nil {
		return err
	}

	manifestPath := validateManifest
	if manifestPath == "" {
		manifestPath = config.DefaultManifestPath(validateProject)
	}

	if !validateWatch {
		return validateOnce(manifestPath, true)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First pass immediately; watch failures after that only report.
	if err := validateOnce(manifestPath, false); err != nil {
		fmt.Println(cli.FormatError(err))
	}

	watcher := config.NewWatcher(manifestPath, 0)
	changes := make(chan string, 1)
	if err := watcher.Start(ctx, changes); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s (ctrl-c to stop)\n", manifestPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			fmt.Printf("\n%s changed, revalidating\n", manifestPath)
			if err := validateOnce(manifestPath, false); err != nil {
				fmt.Println(cli.FormatError(err))
			}
		}
	}
}

// validateOnce loads and validates the manifest. When fatal is true a
// validation failure is returned so the process exits with the validation
// code; otherwise issues are only printed.
func validateOnce(manifestPath string, fatal bool) error {
	services, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	validation := coordinator.ValidateServices(services)

	switch cli.OutputFormat(validateOutput) {
	case cli.OutputFormatJSON:
		if err := cli.PrintJSON(os.Stdout, validation); err != nil {
			return err
		}
	case cli.OutputFormatYAML:
		if err := cli.PrintYAML(os.Stdout, validation); err != nil {
			return err
		}
	default:
		if validation.Valid {
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d services valid", len(services))))
		} else {
			cli.NewRenderer(os.Stdout).RenderIssues(validation.Issues)
		}
	}

	if !validation.Valid && fatal {
		return api.NewValidationError(validation.Issues...)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateManifest, "manifest", "", "Services manifest path (default .convoy/services.yaml)")
	validateCmd.Flags().StringVar(&validateProject, "project", ".", "Project directory holding the .convoy state")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "table", "Output format: table, json or yaml")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "Revalidate whenever the manifest changes")
}
