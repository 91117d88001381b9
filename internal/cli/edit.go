package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/store"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [event-id]",
	Short: "Edit a countdown",
	Long: `Change fields of a countdown. Only the flags given are changed.

Examples:
  neocount edit 3f2a9c1b --name "Japan Trip 2027"
  neocount edit 3f2a --date 2027-05-01 --time 08:00 --color blue`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editName  string
	editDesc  string
	editDate  string
	editTime  string
	editIcon  string
	editColor string
)

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVar(&editDesc, "desc", "", "New description")
	editCmd.Flags().StringVarP(&editDate, "date", "d", "", "New target date (YYYY-MM-DD)")
	editCmd.Flags().StringVarP(&editTime, "time", "t", "", "New target time of day (HH:MM)")
	editCmd.Flags().StringVar(&editIcon, "icon", "", "New icon")
	editCmd.Flags().StringVar(&editColor, "color", "", "New color")
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	e, err := store.Find(ctx, s, args[0])
	if err != nil {
		return fmt.Errorf("countdown %s: %w", args[0], err)
	}

	patch, err := editPatch(cmd, e, time.Now())
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("nothing to change, pass at least one flag")
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	updated, err := s.Update(ctx, e.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update countdown: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s %s (%s)\n", updated.Icon, updated.Name, shortID(updated.ID))
	return nil
}

// editPatch collects the flags that were set into a patch. Date and time keep
// the other half from the event's target as seen in now's zone.
func editPatch(cmd *cobra.Command, e model.Event, now time.Time) (model.Patch, error) {
	var p model.Patch
	flags := cmd.Flags()

	if flags.Changed("name") {
		p.Name = &editName
	}
	if flags.Changed("desc") {
		if e.IsDetailedNotes {
			return p, errors.New("countdown uses note pages, use: neocount note add")
		}
		p.Description = &editDesc
	}
	if flags.Changed("icon") {
		p.Icon = &editIcon
	}
	if flags.Changed("color") {
		c := model.Color(strings.ToLower(editColor))
		p.Color = &c
	}

	if flags.Changed("date") || flags.Changed("time") {
		current := e.TargetDate.In(now.Location())
		date := current.Format("2006-01-02")
		clock := current.Format("15:04")
		if flags.Changed("date") {
			date = editDate
		}
		if flags.Changed("time") {
			clock = editTime
		}
		target, err := parseTarget(date, clock, now)
		if err != nil {
			return p, err
		}
		p.TargetDate = &target
	}
	return p, nil
}
