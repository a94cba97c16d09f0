package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/websymbols-mcp/internal/loader"
)

var (
	loadForce              bool
	loadIncludeNodeModules bool
	loadKeepMissing        bool
)

var loadCmd = &cobra.Command{
	Use:   "load [paths...]",
	Short: "Load web-types manifests into the database",
	Long: `Load web-types manifests from files, package.json files or directories.
Without arguments the configured manifest_dirs are loaded.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadForce, "force", false, "Reload manifests whose content did not change")
	loadCmd.Flags().BoolVar(&loadIncludeNodeModules, "include-node-modules", false, "Walk node_modules directories")
	loadCmd.Flags().BoolVar(&loadKeepMissing, "keep-missing", false, "Keep manifests whose files disappeared")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = cfg.ManifestDirs
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: pass paths or set manifest_dirs", loader.ErrNoRoots)
	}

	ctx := cmd.Context()
	server, err := openServer(ctx)
	if err != nil {
		return err
	}
	defer server.Close()

	stats, err := server.Loader().Load(ctx, paths, &loader.Config{
		Workers:            cfg.Workers,
		IncludeNodeModules: loadIncludeNodeModules,
		Force:              loadForce,
		KeepMissing:        loadKeepMissing,
		Strict:             cfg.Strict,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded:        %d\n", stats.ManifestsLoaded)
	fmt.Fprintf(out, "Skipped:       %d\n", stats.ManifestsSkipped)
	fmt.Fprintf(out, "Failed:        %d\n", stats.ManifestsFailed)
	fmt.Fprintf(out, "Removed:       %d\n", stats.ManifestsRemoved)
	fmt.Fprintf(out, "Contributions: %d\n", stats.ContributionCount)
	fmt.Fprintf(out, "Duration:      %s\n", stats.Duration.Round(time.Millisecond))
	for _, msg := range stats.ErrorMessages {
		fmt.Fprintf(out, "error: %s\n", msg)
	}
	for _, msg := range stats.Warnings {
		fmt.Fprintf(out, "warning: %s\n", msg)
	}
	if stats.ManifestsFailed > 0 {
		return fmt.Errorf("%d manifests failed to load", stats.ManifestsFailed)
	}
	return nil
}
