package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/search"
)

func searchCmd() *cobra.Command {
	var (
		domains []string
		scope   string
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search enterprises by text and domains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := search.Criteria{DomainIDs: domains}
			if len(args) == 1 {
				c.Text = args[0]
			}
			list, err := search.NewEngine(data, timeout, nil).Search(cmd.Context(), search.ParseScope(scope), c)
			if err != nil {
				return err
			}
			printEnterprises(cmd, list)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&domains, "domain", "d", nil, "domain id filter (repeatable, any matches)")
	cmd.Flags().StringVar(&scope, "scope", string(search.ScopeSearch), "empty-query policy: search or home")
	return cmd
}

func printEnterprises(cmd *cobra.Command, list []models.Enterprise) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDOMAINS")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.LongName, e.Status, strings.Join(e.BusinessDomains, ","))
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "%d result(s)\n", len(list))
}
