package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"fintrack/models"
	"fintrack/service"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out, start, end string

	cmd := &cobra.Command{
		Use:       "export income|outgoing|history",
		Short:     "Write income or outgoing rows as CSV, or a date range as an XLSX workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.KindIncome), string(models.KindOutgoing), "history"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			exporter := service.NewExportService(store, opts.cfg.Export.Dir)
			today := store.Today().Format(models.DateLayout)

			var path string
			switch args[0] {
			case string(models.KindIncome):
				rows, err := exporter.Income()
				if err != nil {
					return err
				}
				content, err := service.IncomeCSV(rows)
				if err != nil {
					return err
				}
				path, err = writeCSV(exporter, out, "income_export_"+today+".csv", content)
				if err != nil {
					return err
				}
			case string(models.KindOutgoing):
				rows, err := exporter.Outgoing()
				if err != nil {
					return err
				}
				content, err := service.OutgoingCSV(rows)
				if err != nil {
					return err
				}
				path, err = writeCSV(exporter, out, "expenses_export_"+today+".csv", content)
				if err != nil {
					return err
				}
			case "history":
				if start == "" || end == "" {
					return fmt.Errorf("history export needs --start and --end")
				}
				hist, err := service.NewAnalyticsService(store).History(start, end)
				if err != nil {
					return err
				}
				data, err := service.HistoryWorkbook(hist)
				if err != nil {
					return err
				}
				path = out
				if path == "" {
					path = filepath.Join(exporter.Dir(), fmt.Sprintf("history_%s_%s.xlsx", start, end))
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("create export dir: %w", err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			default:
				return fmt.Errorf("unknown export %q", args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: export directory)")
	cmd.Flags().StringVar(&start, "start", "", "first date of the history range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date of the history range (YYYY-MM-DD)")

	return cmd
}

// writeCSV writes to an explicit path when given, otherwise into the export directory.
func writeCSV(exporter *service.ExportService, out, defaultName, content string) (string, error) {
	if out == "" {
		return exporter.WriteCSV(defaultName, content)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}
