package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newConsiderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consider",
		Short: "Track open questions against a change",
	}

	cmd.AddCommand(
		newConsiderProposeCmd(app),
		newConsiderAnswerCmd(app),
		newConsiderResolveCmd(app),
		newConsiderReopenCmd(app),
		newConsiderListCmd(app),
		newConsiderHistoryCmd(app),
	)

	return cmd
}

func considerationSeq(arg string) (int, error) {
	seq, err := strconv.Atoi(arg)
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("invalid consideration number %q", arg)
	}
	return seq, nil
}

func newConsiderProposeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose <change-id> <question>",
		Short: "Raise a new consideration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Considerations.Propose(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Consideration #%d raised against %s\n", c.Seq, c.ChangeID)
			return nil
		},
	}

	return cmd
}

func newConsiderAnswerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer <change-id> <number> <answer>",
		Short: "Attach an answer (does not resolve)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := considerationSeq(args[1])
			if err != nil {
				return err
			}
			if err := app.Considerations.AttachAnswer(context.Background(), args[0], seq, args[2]); err != nil {
				return err
			}
			fmt.Printf("Answer attached to #%d. Resolve it separately once reviewed.\n", seq)
			return nil
		},
	}

	return cmd
}

func newConsiderResolveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "resolve <change-id> <number>",
		Short: "Resolve an answered consideration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			seq, err := considerationSeq(args[1])
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				c, err := app.Considerations.Get(ctx, args[0], seq)
				if err != nil {
					return err
				}
				confirmed, err := confirm(fmt.Sprintf("Resolve #%d %q?", c.Seq, c.Question))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := app.Considerations.Resolve(ctx, args[0], seq); err != nil {
				return err
			}
			fmt.Printf("Resolved #%d\n", seq)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newConsiderReopenCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reopen <change-id> <number>",
		Short: "Reopen a resolved consideration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := considerationSeq(args[1])
			if err != nil {
				return err
			}
			if err := app.Considerations.Reopen(context.Background(), args[0], seq, reason); err != nil {
				return err
			}
			fmt.Printf("Reopened #%d\n", seq)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the consideration is reopened")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newConsiderListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <change-id>",
		Short: "List considerations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			considerations, err := app.Considerations.List(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(considerations) == 0 {
				fmt.Println("No considerations raised.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatConsiderations(considerations))
			return nil
		},
	}

	return cmd
}

func newConsiderHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <change-id> <number>",
		Short: "Show a consideration's full event log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := considerationSeq(args[1])
			if err != nil {
				return err
			}
			events, err := app.Considerations.History(context.Background(), args[0], seq)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatConsiderationHistory(events))
			return nil
		},
	}

	return cmd
}
