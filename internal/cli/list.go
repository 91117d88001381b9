package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/neocount/internal/countdown"
	"github.com/existflow/neocount/internal/model"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List countdowns",
	Long: `List countdowns ordered by target date.

Examples:
  neocount list
  neocount list --upcoming
  neocount ls --json`,
	RunE: runList,
}

var (
	listUpcoming bool
	listJSON     bool
)

func init() {
	listCmd.Flags().BoolVarP(&listUpcoming, "upcoming", "u", false, "Hide completed countdowns")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print events as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
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

	now := time.Now()
	if listUpcoming {
		kept := events[:0]
		for _, e := range events {
			if !countdown.Calculate(e.TargetDate, now).IsPast {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(out, "No Countdowns Yet. Add one with: neocount add \"Japan Trip\" --date 2027-04-01")
		return nil
	}

	printEvents(out, events, now)
	return nil
}

func printEvents(w io.Writer, events []model.Event, now time.Time) {
	fmt.Fprintf(w, "\n⏳ Countdowns (%d)\n", len(events))
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, e := range events {
		printEvent(w, e, now)
	}
	fmt.Fprintln(w)
}

func printEvent(w io.Writer, e model.Event, now time.Time) {
	left := countdown.Calculate(e.TargetDate, now)
	remaining := "COMPLETED"
	if !left.IsPast {
		remaining = fmt.Sprintf("%dd %02dh %02dm %02ds", left.Days, left.Hours, left.Minutes, left.Seconds)
	}

	notes := ""
	if e.IsDetailedNotes {
		notes = fmt.Sprintf(" [%d pages]", len(e.Notes))
	}

	name := truncate.StringWithTail(e.Icon+" "+e.Name, 28, "…")
	fmt.Fprintf(w, "%s  %-28s  %s  %-16s  %s%s\n",
		shortID(e.ID), name, e.TargetDate.Format("2006-01-02 15:04"), remaining, e.Color, notes)
}
