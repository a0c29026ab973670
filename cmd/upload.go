package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ollyhq/olly-cli/internal/domain"
	"github.com/ollyhq/olly-cli/internal/domain/android"
	"github.com/ollyhq/olly-cli/internal/domain/dsym"
	m "github.com/ollyhq/olly-cli/internal/model"
)

var proguardAppFlag string
var proguardMappingFlag string
var proguardManifestFlag string
var proguardVersionNameFlag string
var proguardVersionCodeFlag string

var dsymsDirFlag string
var dsymsDryRunFlag bool

// uploadCmd groups the native-platform artifact uploads.
var uploadCmd = newUploadCmd()

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload Android and iOS debugging symbols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newProguardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proguard",
		Short: "Upload an Android mapping file",
		Long: `Upload a ProGuard/R8 mapping file. When --manifest is given, the app id
and version are read from AndroidManifest.xml and fill any flags left unset.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifact, err := buildProguardArtifact()
			if err != nil {
				return surfaceError(err)
			}

			uploader := newUploader(1)

			stats, err := uploader.UploadArtifacts(cmd.Context(), []m.Artifact{artifact}, false)
			if err != nil {
				return surfaceError(err)
			}

			if stats.Failed > 0 {
				return fmt.Errorf("mapping upload failed; see the log for details")
			}

			cmd.Printf("uploaded mapping for %s\n", artifact.AppID)

			return nil
		},
	}

	cmd.Flags().StringVar(&proguardAppFlag, appFlagName, viper.GetString(appConfigKey),
		"application id (overrides the manifest)")
	bindFlagToConfig(cmd.Flags().Lookup(appFlagName), appConfigKey)
	cmd.Flags().StringVar(&proguardMappingFlag, "mapping", "", "path to mapping.txt")
	cobra.CheckErr(cmd.MarkFlagRequired("mapping"))
	cmd.Flags().StringVar(&proguardManifestFlag, "manifest", "", "path to AndroidManifest.xml")
	cmd.Flags().StringVar(&proguardVersionNameFlag, "version-name", "", "application version name")
	cmd.Flags().StringVar(&proguardVersionCodeFlag, "version-code", "", "application version code")

	return cmd
}

func buildProguardArtifact() (m.Artifact, error) {
	artifact := m.Artifact{
		Kind:        m.ArtifactProguard,
		Name:        filepath.Base(proguardMappingFlag),
		AppID:       proguardAppFlag,
		VersionName: proguardVersionNameFlag,
		VersionCode: proguardVersionCodeFlag,
	}

	if proguardManifestFlag != "" {
		data, err := fsAdapter.ReadFile(m.Path(proguardManifestFlag))
		if err != nil {
			return m.Artifact{}, &domain.UserError{Op: "read manifest", Path: m.Path(proguardManifestFlag),
				Msg: "cannot read AndroidManifest.xml; check the --manifest path", Err: err}
		}

		manifest, err := android.ParseManifest(data)
		if err != nil {
			return m.Artifact{}, err
		}

		if artifact.AppID == "" {
			artifact.AppID = manifest.Package
		}

		if artifact.VersionName == "" {
			artifact.VersionName = manifest.VersionName
		}

		if artifact.VersionCode == "" {
			artifact.VersionCode = manifest.VersionCode
		}
	}

	if artifact.AppID == "" {
		return m.Artifact{}, &domain.UserError{Op: "upload proguard", Path: m.Path(proguardMappingFlag),
			Msg: "no application id; pass --app or --manifest"}
	}

	payload, err := fsAdapter.ReadFile(m.Path(proguardMappingFlag))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.Artifact{}, &domain.UserError{Op: "read mapping", Path: m.Path(proguardMappingFlag),
				Msg: "mapping file does not exist; check the --mapping path", Err: err}
		}

		return m.Artifact{}, fmt.Errorf("read mapping %s: %w", proguardMappingFlag, err)
	}

	artifact.Payload = payload

	return artifact, nil
}

func newDsymsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsyms",
		Short: "Zip and upload iOS dSYM bundles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifacts, err := collectDsymArtifacts(cmd)
			if err != nil {
				return surfaceError(err)
			}

			if len(artifacts) == 0 {
				cmd.Printf("warning: no dSYM bundles found under %s\n", dsymsDirFlag)
				return nil
			}

			uploader := newUploader(viper.GetInt(uploadParallelKey))

			stats, err := uploader.UploadArtifacts(cmd.Context(), artifacts, dsymsDryRunFlag)
			if err != nil {
				return surfaceError(err)
			}

			cmd.Printf("uploaded %d dSYM archive(s), %d skipped, %d failed\n",
				stats.Uploaded, stats.Skipped, stats.Failed)

			if stats.Failed > 0 {
				return fmt.Errorf("%d dSYM upload(s) failed", stats.Failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&dsymsDirFlag, directoryFlagName, "d", "",
		"build directory to search for *.dSYM bundles")
	cobra.CheckErr(cmd.MarkFlagRequired(directoryFlagName))
	cmd.Flags().BoolVar(&dsymsDryRunFlag, dryRunFlagName, false,
		"list the bundles that would be uploaded without sending anything")

	return cmd
}

func collectDsymArtifacts(cmd *cobra.Command) ([]m.Artifact, error) {
	dir := m.Path(dsymsDirFlag)

	info, err := fsAdapter.FileInfo(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.UserError{Op: "scan", Path: dir,
				Msg: "directory does not exist; check the --directory value", Err: err}
		}

		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, &domain.UserError{Op: "scan", Path: dir,
			Msg: "path is not a directory; --directory must point at your build output"}
	}

	archiver := dsym.NewArchiver(fsAdapter)

	bundles, err := archiver.FindBundles(dir)
	if err != nil {
		return nil, err
	}

	artifacts := make([]m.Artifact, 0, len(bundles))

	for _, bundle := range bundles {
		cmd.Printf("  found %s\n", bundle)

		payload, err := archiver.Archive(bundle)
		if err != nil {
			return nil, err
		}

		artifacts = append(artifacts, m.Artifact{
			Kind:    m.ArtifactDSYM,
			Name:    filepath.Base(string(bundle)) + ".zip",
			Payload: payload,
		})
	}

	return artifacts, nil
}

func init() {
	uploadCmd.AddCommand(newProguardCmd())
	uploadCmd.AddCommand(newDsymsCmd())
	rootCmd.AddCommand(uploadCmd)
}
