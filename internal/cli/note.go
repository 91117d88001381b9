package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/neocount/internal/editor"
	"github.com/existflow/neocount/internal/store"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage note pages of a countdown",
	Long:  `Read and write the titled note pages of a countdown with detailed notes.`,
}

var noteAddCmd = &cobra.Command{
	Use:   "add [event-id]",
	Short: "Add or replace a note page",
	Long: `Add a note page, or replace one with --page.

Examples:
  neocount note add 3f2a --title "Guests" --content "Alice, Bob"
  echo "Updated list" | neocount note add 3f2a --page 9b1c --content -`,
	Args: cobra.ExactArgs(1),
	RunE: runNoteAdd,
}

var noteListCmd = &cobra.Command{
	Use:   "list [event-id]",
	Short: "Show the note pages of a countdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteList,
}

var noteDetailCmd = &cobra.Command{
	Use:   "detail [event-id]",
	Short: "Switch a countdown to note pages",
	Long: `Switch a countdown from a simple description to note pages. The
description becomes the first page, titled "General Notes". This cannot be
undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runNoteDetail,
}

var (
	noteTitle   string
	noteContent string
	notePage    string
)

func init() {
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteDetailCmd)

	noteAddCmd.Flags().StringVar(&noteTitle, "title", "", "Page title (Untitled Note when empty)")
	noteAddCmd.Flags().StringVar(&noteContent, "content", "", "Page content, - reads stdin")
	noteAddCmd.Flags().StringVar(&notePage, "page", "", "Id of the page to replace")
}

// openFlow loads an event into an editor flow in view mode
func openFlow(ctx context.Context, s store.Store, id string) (*editor.Flow, error) {
	e, err := store.Find(ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("countdown %s: %w", id, err)
	}
	flow := editor.New(s)
	if err := flow.Open(e); err != nil {
		return nil, err
	}
	return flow, nil
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
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

	flow, err := openFlow(ctx, s, args[0])
	if err != nil {
		return err
	}

	pageID := resolvePage(flow, notePage)
	if err := flow.OpenNote(pageID); err != nil {
		if errors.Is(err, editor.ErrSimpleNotes) {
			return fmt.Errorf("%w, run: neocount note detail %s", err, args[0])
		}
		return err
	}

	title := noteTitle
	if !cmd.Flags().Changed("title") {
		title = flow.Note().Title
	}
	content := noteContent
	switch {
	case content == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		content = string(data)
	case !cmd.Flags().Changed("content"):
		content = flow.Note().Content
	}

	if err := flow.SaveNote(ctx, title, content, time.Now()); err != nil {
		return err
	}

	notes := flow.Draft().Notes
	saved := notes[len(notes)-1]
	for _, n := range notes {
		if n.ID == pageID {
			saved = n
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved page %q (%s)\n", saved.Title, shortID(saved.ID))
	return nil
}

func runNoteList(cmd *cobra.Command, args []string) error {
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
	fmt.Fprintf(out, "\n%s %s\n\n", e.Icon, e.Name)
	if !e.IsDetailedNotes {
		if e.Description == "" {
			fmt.Fprintln(out, "No description.")
		} else {
			fmt.Fprintln(out, indent.String(wordwrap.String(e.Description, 72), 2))
		}
		return nil
	}

	if len(e.Notes) == 0 {
		fmt.Fprintln(out, "No pages yet. Add one with: neocount note add "+shortID(e.ID))
		return nil
	}
	for _, n := range e.Notes {
		fmt.Fprintf(out, "📄 %s  (%s, %s)\n", n.Title, shortID(n.ID), n.UpdatedAt.Local().Format("Jan 2 15:04"))
		if n.Content != "" {
			fmt.Fprintln(out, indent.String(wordwrap.String(n.Content, 72), 3))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runNoteDetail(cmd *cobra.Command, args []string) error {
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

	flow, err := openFlow(ctx, s, args[0])
	if err != nil {
		return err
	}
	if flow.Draft().IsDetailedNotes {
		fmt.Fprintln(cmd.OutOrStdout(), "Already using note pages.")
		return nil
	}

	if err := flow.EditConfig(); err != nil {
		return err
	}
	if err := flow.EnableDetailedNotes(time.Now()); err != nil {
		return err
	}
	e, err := flow.Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to enable note pages: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s now has %d note pages\n", e.Name, len(e.Notes))
	return nil
}

// resolvePage expands a page id prefix against the event's pages
func resolvePage(flow *editor.Flow, prefix string) string {
	if prefix == "" {
		return ""
	}
	for _, n := range flow.Draft().Notes {
		if strings.HasPrefix(n.ID, prefix) {
			return n.ID
		}
	}
	return prefix
}
