package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "github.com/ollyhq/olly-cli/internal/model"
)

var sourcemapsDirFlag string
var sourcemapsDryRunFlag bool
var sourcemapsReportFlag bool
var sourcemapsParallelFlag int

// sourcemapsCmd groups the JavaScript source map subcommands.
var sourcemapsCmd = newSourcemapsCmd()

func newSourcemapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sourcemaps",
		Short: "Inject and upload JavaScript source maps",
		Long: `Pair each JS file in a build directory with its source map, embed a
content-derived id into the JS file, and optionally upload the maps so the
backend can symbolicate production stack traces.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newInjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Embed source map ids into JS files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := runInjectPass(cmd)
			return err
		},
	}

	configureSourcemapsFlags(cmd)

	return cmd
}

func newUploadSourcemapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Inject source map ids, then upload the maps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := runInjectPass(cmd)
			if err != nil {
				return err
			}

			uploader := newUploader(viper.GetInt(uploadParallelKey))

			stats, err := uploader.UploadMaps(cmd.Context(), report, sourcemapsDryRunFlag)
			if err != nil {
				return surfaceError(err)
			}

			cmd.Printf("uploaded %d map(s), %d skipped, %d failed\n",
				stats.Uploaded, stats.Skipped, stats.Failed)

			if stats.Failed > 0 {
				return fmt.Errorf("%d map upload(s) failed", stats.Failed)
			}

			return nil
		},
	}

	configureSourcemapsFlags(cmd)
	cmd.Flags().IntVar(&sourcemapsParallelFlag, uploadParallelFlagName,
		viper.GetInt(uploadParallelKey), "maximum concurrent uploads")
	bindFlagToConfig(cmd.Flags().Lookup(uploadParallelFlagName), uploadParallelKey)

	return cmd
}

func configureSourcemapsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sourcemapsDirFlag, directoryFlagName, "d", "",
		"build directory containing JS files and source maps")
	cobra.CheckErr(cmd.MarkFlagRequired(directoryFlagName))

	cmd.Flags().BoolVar(&sourcemapsDryRunFlag, dryRunFlagName, false,
		"report intended changes without writing any file")
	cmd.Flags().BoolVar(&sourcemapsReportFlag, "report", false,
		"save a YAML run report to the output directory")
}

// runInjectPass runs the directory scan and injection shared by the inject
// and upload subcommands.
func runInjectPass(cmd *cobra.Command) (m.RunReport, error) {
	ctx := cmd.Context()

	report, err := processor.Run(ctx, m.Path(sourcemapsDirFlag), sourcemapsDryRunFlag)

	ui.Close(ctx)

	if err != nil {
		return report, surfaceError(err)
	}

	if sourcemapsReportFlag {
		path, saveErr := reportStore.Save(m.Path(viper.GetString(outputFlagName)), report)
		if saveErr != nil {
			return report, surfaceError(saveErr)
		}

		cmd.Printf("report written to %s\n", path)
	}

	if report.Summary.Failed > 0 {
		return report, fmt.Errorf("%d file(s) failed; see the log for details", report.Summary.Failed)
	}

	return report, nil
}

func init() {
	sourcemapsCmd.AddCommand(newInjectCmd())
	sourcemapsCmd.AddCommand(newUploadSourcemapsCmd())
	rootCmd.AddCommand(sourcemapsCmd)
}
