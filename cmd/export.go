// cmd/export.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/visabulletin/models"
)

var exportOut *string

func init() {
	exportOut = exportCmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <action|filing> [--out <file.csv>]",
	Short: "Export one stored bulletin table as CSV.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := models.ParseTableKind(args[0])
		if !ok {
			return fmt.Errorf("invalid table %q: use action or filing", args[0])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = cmd.OutOrStdout()
		if *exportOut != "" {
			f, err := os.Create(*exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", *exportOut, err)
			}
			defer f.Close()
			w = f
		}

		n, err := a.bulletins.ExportCSV(cmd.Context(), kind, w)
		if err != nil {
			return err
		}
		if *exportOut != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, *exportOut)
		}
		return nil
	},
}
