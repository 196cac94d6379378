package cmd

import (
	"os"

	"convoy/internal/api"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
// These follow common conventions so scripts can branch on the outcome.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidation indicates the release request failed validation
	// before any deployment side effect.
	ExitCodeValidation = 2
	// ExitCodeReleaseFailed indicates the release ran but ended failed or
	// rolled back.
	ExitCodeReleaseFailed = 3
)

// rootCmd represents the base command for the convoy application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "convoy",
	Short: "Coordinate multi-service releases",
	Long: `convoy coordinates releases spanning multiple services: it validates
the dependency graph, plans deployment batches, deploys them with the
chosen strategy, optionally rolls back on failure and keeps a durable
release history.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is typically called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It runs the root command and maps errors to semantic exit codes.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "convoy version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if api.IsValidationError(err) {
		return ExitCodeValidation
	}
	if isReleaseFailed(err) {
		return ExitCodeReleaseFailed
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
