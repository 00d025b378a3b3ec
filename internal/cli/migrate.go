package cli

import (
	"github.com/cyberregistro/ledger/internal/authz"
	"github.com/cyberregistro/ledger/internal/models"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and builtin roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.migrate()
	},
}

func (e *env) migrate() error {
	if err := models.Migrate(e.db); err != nil {
		return err
	}
	authzService, err := authz.NewService(e.db)
	if err != nil {
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return err
	}
	e.printf("schema migrated, builtin roles ready\n")
	return nil
}
