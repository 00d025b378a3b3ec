// Package cli 运维命令行 ledgerctl。
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/models"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env 单次命令执行持有的配置与数据库
type env struct {
	cfg *config.Config
	db  *gorm.DB
	out io.Writer
}

var (
	configPath string
	current    *env
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Operate the credit ledger",
	Long:          `Operator commands for the credit ledger: schema migration, coupon import, manual credit grants and admin accounts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if current != nil {
			return nil
		}
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
		db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
			MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
		}, false)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		current = &env{cfg: cfg, db: db, out: cmd.OutOrStdout()}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yml (defaults to ./config.yml)")
}

// Execute 执行命令并返回退出码
func Execute() int {
	defer func() {
		if current != nil && current.db != nil {
			_ = models.CloseDB(current.db)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}
