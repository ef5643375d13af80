package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/koyostar/ItinaviCN-sub000/internal/config"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage/sqlstore"
	"github.com/koyostar/ItinaviCN-sub000/pkg/logging"
)

var (
	envFiles []string
	cfg      config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:          "itinavi",
		Short:        "Trip expense ledger server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(envFiles...)
			if err != nil {
				return err
			}
			logging.SetupWithLevel(cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(serveCmd(), migrateCmd(), reportCmd())
	return root.Execute()
}

// openStore connects to the configured database, running migrations.
func openStore() (*sqlstore.Store, error) {
	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "driver", cfg.DBDriver)
	return store, nil
}
