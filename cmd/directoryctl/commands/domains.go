package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func domainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List business domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := data.GetDomains(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.ID, d.DomainName, d.Description)
			}
			return nil
		},
	}
}
