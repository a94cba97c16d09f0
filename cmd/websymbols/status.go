package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show loaded manifests and database statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	server, err := openServer(ctx)
	if err != nil {
		return err
	}
	defer server.Close()

	status, err := server.Query().Status(ctx)
	if err != nil {
		return err
	}
	if statusJSON {
		return printJSON(cmd, status)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database:  %s\n", cfg.DBPath)
	if status.Framework != "" {
		fmt.Fprintf(out, "Framework: %s\n", status.Framework)
	}
	fmt.Fprintf(out, "Manifests: %d\n", status.Manifests)
	for _, lib := range status.Libraries {
		fmt.Fprintf(out, "  %s %s (%d contributions) %s\n", lib.Name, lib.Version, lib.Contributions, lib.Source)
	}
	if len(status.Kinds) > 0 {
		fmt.Fprintf(out, "Kinds:     %s\n", strings.Join(status.Kinds, ", "))
	}
	if st := status.Storage; st != nil {
		fmt.Fprintf(out, "Stored:    %d manifests, %d failed, %d contributions (%d patterns)\n",
			st.ManifestsCount, st.FailedCount, st.ContributionsCount, st.PatternsCount)
		fmt.Fprintf(out, "Size:      %.2f MB\n", st.DatabaseSizeMB)
		if st.LastLoad != nil {
			fmt.Fprintf(out, "Last load: %s (%s)\n", st.LastLoad.StartedAt.Format("2006-01-02 15:04:05"), st.LastLoad.Roots)
		}
	}
	return nil
}
