package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <change-id>",
		Short: "Report phase standing without advancing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Gate.Status(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatPhaseReport(report))
			return nil
		},
	}

	return cmd
}

func newAdvanceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance <change-id> [phase]",
		Short: "Advance the document into the next phase",
		Long: `Advance moves a plan document into the named phase, or into the
immediate successor of the current phase when no phase is given. The gate
refuses unless the target is the immediate successor and every checklist
item of the current phase is done. Re-invoking a phase the document has
already reached reports standing and changes nothing.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				phase, err := parsePhaseArg(args[1])
				if err != nil {
					return err
				}
				return runAdvance(app, args[0], phase)
			}

			report, err := app.Gate.Status(context.Background(), args[0])
			if err != nil {
				return err
			}
			next, ok := report.CurrentPhase.Next()
			if !ok {
				fmt.Printf("%s\n", formatter.FormatPhaseReport(report))
				return nil
			}
			return runAdvance(app, args[0], next)
		},
	}

	return cmd
}

func newVerifyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <change-id>",
		Short: "Enter readiness verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvance(app, args[0], domain.PhaseVerification)
		},
	}

	return cmd
}

func newRealizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realize <change-id>",
		Short: "Mark the change realized and archive its document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvance(app, args[0], domain.PhaseRealized)
		},
	}

	return cmd
}

func runAdvance(app *App, changeID string, phase domain.Phase) error {
	report, err := app.Gate.Advance(context.Background(), changeID, phase)
	if err != nil {
		var violation *domain.GateViolationError
		if errors.As(err, &violation) {
			fmt.Printf("%s\n", formatter.FormatGateViolation(violation))
		}
		return err
	}

	fmt.Printf("%s\n", formatter.FormatPhaseReport(report))
	return nil
}
