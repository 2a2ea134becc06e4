package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror document content to the external tracker",
	}

	cmd.AddCommand(
		newSyncPostCmd(app),
		newSyncResyncCmd(app),
		newSyncStatusCmd(app),
	)

	return cmd
}

func newSyncPostCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <change-id> <anchor>",
		Short: "Post an anchor (a section name or consideration/N) to the tracker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := app.Resolver.Post(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Posted %s → %s\n", ref.LocalAnchor, ref.URL)
			return nil
		},
	}

	return cmd
}

func newSyncResyncCmd(app *App) *cobra.Command {
	var all bool
	var retries int

	cmd := &cobra.Command{
		Use:   "resync <change-id> [anchor]",
		Short: "Push current local content to existing tracker records",
		Long: `Resync re-posts local content to the anchor's existing remote record.
With --all, every stale reference of the change is resynced. Transient
tracker failures are retried with exponential backoff; a reference that
still cannot be pushed stays stale and is safe to resync again later.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			changeID := args[0]

			var anchors []string
			switch {
			case all:
				report, err := app.Resolver.SyncStatus(ctx, changeID)
				if err != nil {
					return err
				}
				for _, ref := range report.Refs {
					if ref.SyncState == domain.SyncStale {
						anchors = append(anchors, ref.LocalAnchor)
					}
				}
				if len(anchors) == 0 {
					fmt.Println("Nothing is stale.")
					return nil
				}
			case len(args) == 2:
				anchors = []string{args[1]}
			default:
				return fmt.Errorf("an anchor or --all is required")
			}

			for _, anchor := range anchors {
				if err := resyncWithRetry(ctx, app, changeID, anchor, retries); err != nil {
					return err
				}
				fmt.Printf("Resynced %s\n", anchor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Resync every stale reference")
	cmd.Flags().IntVar(&retries, "retries", 3, "Retry attempts for transient tracker failures")

	return cmd
}

// resyncWithRetry retries transient tracker failures; anything else is
// permanent.
func resyncWithRetry(ctx context.Context, app *App, changeID, anchor string, retries int) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	operation := func() error {
		_, err := app.Resolver.Resync(ctx, changeID, anchor)
		if err != nil && !errors.Is(err, domain.ErrExternalUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx))
}

func newSyncStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <change-id>",
		Short: "Show sync state of every posted anchor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Resolver.SyncStatus(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(report.Refs) == 0 {
				fmt.Println("Nothing has been posted.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatSyncReport(report))
			return nil
		},
	}

	return cmd
}
