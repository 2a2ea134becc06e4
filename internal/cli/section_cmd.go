package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/spf13/cobra"
)

func newSectionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Read and write document sections",
	}

	cmd.AddCommand(
		newSectionWriteCmd(app),
		newSectionShowCmd(app),
		newSectionListCmd(app),
	)

	return cmd
}

func newSectionWriteCmd(app *App) *cobra.Command {
	var phaseStr, file, bodyFlag string

	cmd := &cobra.Command{
		Use:   "write <change-id> <section>",
		Short: "Replace a section body on behalf of its owning phase",
		Long: `Write replaces a section's content. The body comes from --body, from
--file, or from stdin. The write acts as the phase named by --phase, or
as the change's current phase when omitted. Only the phase that owns the
section may write it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var phase domain.Phase
			if phaseStr != "" {
				var err error
				if phase, err = parsePhaseArg(phaseStr); err != nil {
					return err
				}
			} else {
				doc, err := app.Documents.Get(ctx, args[0])
				if err != nil {
					return err
				}
				phase = doc.CurrentPhase
			}

			var body []byte
			switch {
			case bodyFlag != "":
				body = []byte(bodyFlag)
			case file != "":
				var err error
				if body, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
			default:
				var err error
				if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			if err := app.Documents.WriteSection(ctx, args[0], args[1], string(body), phase); err != nil {
				return err
			}
			fmt.Printf("Wrote %s/%s (%d bytes)\n", args[0], args[1], len(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&phaseStr, "phase", "", "Phase performing the write (default: the change's current phase)")
	cmd.Flags().StringVar(&bodyFlag, "body", "", "Section body given inline")
	cmd.Flags().StringVar(&file, "file", "", "Read the body from this file instead of stdin")

	return cmd
}

func newSectionShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <change-id> <section>",
		Short: "Print one section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := app.Documents.GetSection(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatSection(section))
			return nil
		},
	}

	return cmd
}

func newSectionListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <change-id>",
		Short: "List the document's sections and their fill state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := app.Documents.ListSections(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatSectionList(sections))
			return nil
		},
	}

	return cmd
}
