package cli

import (
	"fmt"

	"github.com/cyberregistro/ledger/internal/authz"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().String("username", "", "Admin username")
	adminCreateCmd.Flags().String("password", "", "Admin password")
	adminCreateCmd.Flags().StringSlice("role", nil, "Builtin role to assign (repeatable)")
	adminCreateCmd.Flags().Bool("super", false, "Create a super admin that bypasses RBAC")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		roles, _ := cmd.Flags().GetStringSlice("role")
		isSuper, _ := cmd.Flags().GetBool("super")
		return current.createAdmin(username, password, roles, isSuper)
	},
}

func (e *env) createAdmin(username, password string, roles []string, isSuper bool) error {
	authService := service.NewAuthService(e.cfg, repository.NewAdminRepository(e.db))
	admin, err := authService.CreateAdmin(username, password, isSuper)
	if err != nil {
		return err
	}
	e.printf("admin %q created (id=%d, super=%t)\n", admin.Username, admin.ID, admin.IsSuper)
	if len(roles) == 0 {
		return nil
	}

	authzService, err := authz.NewService(e.db)
	if err != nil {
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return err
	}
	if err := authzService.SetAdminRoles(admin.ID, roles); err != nil {
		return fmt.Errorf("assign roles to admin %d: %w", admin.ID, err)
	}
	assigned, err := authzService.GetAdminRoles(admin.ID)
	if err != nil {
		return err
	}
	e.printf("roles: %v\n", assigned)
	return nil
}
