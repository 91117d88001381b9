package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/neocount/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new countdown",
	Long: `Add a new countdown.

Examples:
  neocount add "Japan Trip" --date 2027-04-01
  neocount add "Launch" --date 2026-12-01 --time 09:30 --icon 🚀 --color red
  neocount add "Wedding" --date 2027-06-12 --desc "Venue TBD" --detailed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDate     string
	addTime     string
	addDesc     string
	addIcon     string
	addColor    string
	addDetailed bool
)

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Target date (YYYY-MM-DD, 'today', 'tomorrow')")
	addCmd.Flags().StringVarP(&addTime, "time", "t", "00:00", "Target time of day (HH:MM, local)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Description")
	addCmd.Flags().StringVar(&addIcon, "icon", model.Icons[0], "Icon: "+strings.Join(model.Icons, " "))
	addCmd.Flags().StringVar(&addColor, "color", string(model.ColorYellow), "Color: yellow, red, blue, purple, green")
	addCmd.Flags().BoolVar(&addDetailed, "detailed", false, "Use note pages instead of a description")
	_ = addCmd.MarkFlagRequired("date")
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	target, err := parseTarget(addDate, addTime, time.Now())
	if err != nil {
		return err
	}

	draft := model.Draft{
		Name:        strings.Join(args, " "),
		Description: addDesc,
		TargetDate:  target,
		Icon:        addIcon,
		Color:       model.Color(strings.ToLower(addColor)),
	}
	if addDetailed {
		draft.EnableDetailedNotes(time.Now())
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	e, err := s.Create(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to create countdown: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s (%s) %s\n", e.Icon, e.Name, shortID(e.ID), e.TargetDate.Format("Mon, Jan 2 2006 15:04"))
	return nil
}

// parseTarget reads a date and a time of day in local time
func parseTarget(date, clock string, now time.Time) (time.Time, error) {
	date = strings.ToLower(strings.TrimSpace(date))
	switch date {
	case "today":
		date = now.Format("2006-01-02")
	case "tomorrow":
		date = now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	if clock == "" {
		clock = "00:00"
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+strings.TrimSpace(clock), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q / time %q (want YYYY-MM-DD and HH:MM)", date, clock)
	}
	return t, nil
}

// shortID is the prefix commands accept in place of the full id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
