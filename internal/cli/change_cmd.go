package cli

import (
	"context"
	"fmt"

	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/spf13/cobra"
)

func newChangeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change",
		Short: "Manage the change registry",
	}

	cmd.AddCommand(
		newChangeNewCmd(app),
		newChangeListCmd(app),
		newChangeShowCmd(app),
		newChangeRemoveCmd(app),
	)

	return cmd
}

func newChangeNewCmd(app *App) *cobra.Command {
	var typeStr, title, milestone string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Allocate an ID and register a new change",
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := app.Allocator.Allocate(context.Background(), contract.AllocateRequest{
				Type:      domain.ChangeType(typeStr),
				Title:     title,
				Milestone: milestone,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Registered %s: %s\n", formatter.Bold(change.ID), change.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeStr, "type", "feature", "Change type (feature, fix, enhancement, chore)")
	cmd.Flags().StringVar(&title, "title", "", "Change title")
	cmd.Flags().StringVar(&milestone, "milestone", "", "Target milestone")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newChangeListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.Changes.List(context.Background(), all)
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				fmt.Println("No changes found.")
				return nil
			}

			fmt.Printf("%s\n", formatter.FormatChangeList(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed changes")

	return cmd
}

func newChangeShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <change-id>",
		Short: "Show a change and its document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			change, err := app.Changes.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			doc, err := app.Documents.Get(ctx, change.ID)
			if err != nil {
				return err
			}
			sections, err := app.Documents.ListSections(ctx, change.ID)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatChangeShow(change, doc, sections))
			return nil
		},
	}

	return cmd
}

func newChangeRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <change-id>",
		Short: "Remove a change (its ID stays retired)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && app.interactive() {
				confirmed, err := confirm(fmt.Sprintf("Remove %s and its document?", args[0]))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := app.Changes.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s. The identifier will not be reissued.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
