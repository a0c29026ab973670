// Package cmd provides the root command and CLI setup for olly.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ollyhq/olly-cli/internal/adapter"
	"github.com/ollyhq/olly-cli/internal/controller"
	"github.com/ollyhq/olly-cli/internal/domain"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var ui controller.UI
var processor domain.Processor

// newUploader builds an Uploader with the upload configuration resolved at
// command start. Tests replace it to avoid network access.
var newUploader = func(parallel int) domain.Uploader {
	return domain.NewUploader(fsAdapter, adapter.NewAPIClient(buildUploadConfig()), parallel)
}

// verboseFlag switches the log file to debug level.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

// reportsOutputDirFlag is a root-level flag shared by commands that write
// run reports.
var reportsOutputDirFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	processor = domain.NewProcessor(fsAdapter, ui)
}

const rootLongDescription = `Olly uploads debugging-symbol artifacts (Android mapping files, iOS dSYM
bundles, JavaScript source maps) so production stack traces can be translated
back into readable source locations.

For JavaScript builds it also injects a content-derived source map id into
each bundle, letting the backend pick the right map for a deployed script.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "olly",
		Short:         "Upload debugging symbols",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "log file location (default .olly.log)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// surfaceError decides what the operator sees. UserError values carry their
// own remediation text; anything else is logged in full and replaced with a
// generic failure message.
func surfaceError(err error) error {
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		return err
	}

	slog.Error("unexpected error", "error", err)

	return fmt.Errorf("unexpected failure; see %s for details", viper.GetString(logFilenameKey))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
