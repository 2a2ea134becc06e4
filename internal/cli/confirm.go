package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// confirm runs a yes/no prompt on the terminal.
func confirm(title string) (bool, error) {
	var result bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&result),
		),
	).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return result, nil
}
