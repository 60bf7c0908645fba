// cmd/sync.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization and exit. Exits non-zero when the sync fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.sync.RunSync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "synced %d action-date rows and %d filing-date rows at %s\n",
			res.ActionDatesCount, res.FilingDatesCount, res.Timestamp.UTC().Format(time.RFC3339))
		for _, t := range res.SkippedTables {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s table: no rows extracted\n", t)
		}
		return nil
	},
}
