package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/existflow/neocount/internal/ics"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export countdowns as an iCalendar file",
	Long: `Write every countdown as a calendar event, for import into a calendar app.

Examples:
  neocount export > countdowns.ics
  neocount export --out ~/countdowns.ics`,
	RunE: runExport,
}

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "File to write (stdout when empty)")
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	s, err := rt.store(ctx)
	if err != nil {
		return err
	}
	events, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list countdowns: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	if err := ics.Export(w, events, time.Now()); err != nil {
		return fmt.Errorf("failed to export countdowns: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d countdowns to %s\n", len(events), exportOut)
	}
	return nil
}
