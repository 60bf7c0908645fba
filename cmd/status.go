// cmd/status.go
package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gewnthar/visabulletin/models"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last sync outcome and the stored bulletin tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.bulletins.GetBulletin(cmd.Context())
		if err != nil {
			return err
		}
		renderStatus(cmd.OutOrStdout(), snap)
		return nil
	},
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderStatus(w io.Writer, snap *models.BulletinSnapshot) {
	meta := newTable(w)
	meta.SetTitle("Last sync")
	meta.AppendRow(table.Row{"Status", snap.SyncStatus})
	if m := snap.Metadata; m != nil {
		meta.AppendRow(table.Row{"At", m.LastSyncAt.UTC().Format("2006-01-02 15:04:05 MST")})
		meta.AppendRow(table.Row{"Source", m.SourceURL})
		if m.RecordsUpdated != nil {
			meta.AppendRow(table.Row{"Records", *m.RecordsUpdated})
		}
		if m.ErrorMessage != nil {
			meta.AppendRow(table.Row{"Error", *m.ErrorMessage})
		}
	}
	meta.Render()

	renderRows(w, "Final action dates", snap.ActionDates)
	renderRows(w, "Dates for filing", snap.FilingDates)
}

func renderRows(w io.Writer, title string, rows []models.PresentationRow) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Category", "Description", "All", "China", "India", "Mexico", "Philippines"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Category, r.Description,
			cell(r.GlobalCurrent), cell(r.ChinaCurrent), cell(r.IndiaCurrent),
			cell(r.MexicoCurrent), cell(r.PhilippinesCurrent),
		})
	}
	if len(rows) == 0 {
		t.AppendRow(table.Row{"(no rows)"})
	}
	t.Render()
}

func cell(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
