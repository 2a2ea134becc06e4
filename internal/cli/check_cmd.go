package cli

import (
	"context"
	"fmt"

	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/spf13/cobra"
)

func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Manage per-phase checklist items",
	}

	cmd.AddCommand(
		newCheckAddCmd(app),
		newCheckDoneCmd(app),
		newCheckReopenCmd(app),
		newCheckListCmd(app),
	)

	return cmd
}

func newCheckAddCmd(app *App) *cobra.Command {
	var phaseStr, parent string

	cmd := &cobra.Command{
		Use:   "add <change-id> <description>",
		Short: "Add a checklist item (re-adding an existing one is a no-op)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := parsePhaseArg(phaseStr)
			if err != nil {
				return err
			}

			var parentID *string
			if parent != "" {
				parentID = &parent
			}

			item, err := app.Checklist.AddItem(context.Background(), args[0], phase, args[1], parentID)
			if err != nil {
				return err
			}
			fmt.Printf("Item %s: %s\n", formatter.Dim(item.ID), item.Description)
			return nil
		},
	}

	cmd.Flags().StringVar(&phaseStr, "phase", "", "Phase the item belongs to")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent item ID for sub-items")
	_ = cmd.MarkFlagRequired("phase")

	return cmd
}

func newCheckDoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <change-id> <item-id>",
		Short: "Mark a checklist item done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Checklist.MarkDone(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Done: %s\n", args[1])
			return nil
		},
	}

	return cmd
}

func newCheckReopenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reopen <change-id> <item-id>",
		Short: "Reopen a completed checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Checklist.Reopen(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Reopened: %s\n", args[1])
			return nil
		},
	}

	return cmd
}

func newCheckListCmd(app *App) *cobra.Command {
	var phaseStr string

	cmd := &cobra.Command{
		Use:   "list <change-id>",
		Short: "List checklist items, of one phase or the whole change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var items []*domain.ChecklistItem
			if phaseStr != "" {
				phase, err := parsePhaseArg(phaseStr)
				if err != nil {
					return err
				}
				if items, err = app.Checklist.ListByPhase(ctx, args[0], phase); err != nil {
					return err
				}
			} else {
				var err error
				if items, err = app.Checklist.List(ctx, args[0]); err != nil {
					return err
				}
			}

			if len(items) == 0 {
				fmt.Println("No items.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatChecklist(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&phaseStr, "phase", "", "Limit the listing to one phase")

	return cmd
}
