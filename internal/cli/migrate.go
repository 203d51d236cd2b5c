package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info("миграции применены", "path", cfg.Database.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "database ready: %s\n", cfg.Database.Path)
		return nil
	},
}
