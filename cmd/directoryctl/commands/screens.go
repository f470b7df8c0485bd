package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/navigation"
)

func screensCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "screens <role>",
		Short:       "Print the screens a role may reach",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"catalog": "skip"},
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.Role(strings.ToLower(strings.TrimSpace(args[0])))
			for _, s := range navigation.ScreensFor(role) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
