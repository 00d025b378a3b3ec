package cli

import (
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(creditsCmd)
	creditsCmd.AddCommand(creditsGrantCmd)

	creditsGrantCmd.Flags().Uint("user", 0, "User id to credit")
	creditsGrantCmd.Flags().Int64("amount", 0, "Number of credits to add")
	creditsGrantCmd.Flags().String("description", "", "Ledger description")
	_ = creditsGrantCmd.MarkFlagRequired("user")
	_ = creditsGrantCmd.MarkFlagRequired("amount")
}

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Manage user credits",
}

var creditsGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Add credits to a user and record the ledger entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetUint("user")
		amount, _ := cmd.Flags().GetInt64("amount")
		description, _ := cmd.Flags().GetString("description")
		return current.grantCredits(userID, amount, description)
	},
}

func (e *env) grantCredits(userID uint, amount int64, description string) error {
	ledger := service.NewLedgerService(repository.NewUserRepository(e.db), repository.NewTransactionRepository(e.db))
	result, err := ledger.Credit(userID, amount, description)
	if err != nil {
		return err
	}
	e.printf("user %d: %d -> %d (+%d)\n", userID, result.PreviousBalance, result.NewBalance, result.Amount)
	return nil
}
