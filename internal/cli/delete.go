package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/existflow/neocount/internal/store"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [event-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a countdown",
	Long: `Delete a countdown by its id or id prefix.

Examples:
  neocount delete 3f2a9c1b
  neocount rm 3f2a --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	if cfg.ConfirmDelete && !deleteYes {
		fmt.Fprintf(out, "About to delete: %s %s (ID: %s)\n", e.Icon, e.Name, e.ID)
		fmt.Fprint(out, "Are you sure? [y/N]: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := s.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("failed to delete countdown: %w", err)
	}

	fmt.Fprintf(out, "🗑️  Deleted: %s\n", e.Name)
	return nil
}
