package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/businessbook/directory/internal/backend"
	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/traffic"
)

var (
	catalogFile string
	timeout     time.Duration

	store *catalog.Store
	data  *backend.Simulated
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "directoryctl",
		Short:         "Query and check a business directory catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["catalog"] == "skip" {
				return nil
			}
			var src catalog.Source = catalog.EmbeddedSource{}
			if catalogFile != "" {
				src = fileSource(catalogFile)
			}
			s, err := catalog.Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			store = s
			data = backend.NewSimulated(s, traffic.NewMemory(), backend.WithLatency(backend.DefaultLatency().Scaled(0)))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&catalogFile, "catalog", "c", "", "catalog JSON file (default: embedded seed)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-query timeout")

	root.AddCommand(searchCmd(), domainsCmd(), screensCmd(), validateCmd())
	return root
}

// fileSource loads a catalog from a local JSON file.
type fileSource string

func (f fileSource) Name() string { return "file " + string(f) }

func (f fileSource) Load(_ context.Context) (catalog.Catalog, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return catalog.Catalog{}, err
	}
	defer fh.Close()
	c, err := catalog.Decode(fh)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%s: %w", f, err)
	}
	return c, nil
}
