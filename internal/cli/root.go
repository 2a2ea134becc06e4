package cli

import (
	"fmt"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Allocator      service.AllocatorService
	Changes        service.ChangeService
	Documents      service.DocumentService
	Checklist      service.ChecklistService
	Considerations service.ConsiderationService
	Gate           service.GateService
	Resolver       service.ResolverService

	// IsInteractive reports whether stdin is a terminal; confirmation
	// prompts are skipped when it is not.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "draftctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "draftctl",
		Short:         "Gated planning workflow for software changes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newChangeCmd(app),
		newStatusCmd(app),
		newAdvanceCmd(app),
		newVerifyCmd(app),
		newRealizeCmd(app),
		newSectionCmd(app),
		newCheckCmd(app),
		newConsiderCmd(app),
		newSyncCmd(app),
		newBoardCmd(app),
	)

	return root
}

// parsePhaseArg maps a phase argument, accepting short aliases alongside
// the canonical names.
func parsePhaseArg(s string) (domain.Phase, error) {
	aliases := map[string]domain.Phase{
		"tests":     domain.PhaseTestSpec,
		"impl":      domain.PhaseImplSpec,
		"docs":      domain.PhaseDocSpec,
		"changelog": domain.PhaseChangelog,
		"verify":    domain.PhaseVerification,
	}
	if p, ok := aliases[s]; ok {
		return p, nil
	}
	p, ok := domain.ParsePhase(s)
	if !ok {
		return "", fmt.Errorf("unknown phase %q (one of %v)", s, domain.PhaseOrder)
	}
	return p, nil
}
