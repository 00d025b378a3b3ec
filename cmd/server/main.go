package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/cyberregistro/ledger/internal/app"
	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/models"
	"github.com/cyberregistro/ledger/internal/provider"
	"github.com/cyberregistro/ledger/internal/telemetry"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	var configPath string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.StringVar(&configPath, "config", "", "配置文件路径（默认按 ./config.yml 查找）")
	flag.Parse()

	printStartupBanner()

	// 加载配置
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	for name, secret := range map[string]string{"jwt": cfg.JWT.SecretKey, "user_jwt": cfg.UserJWT.SecretKey} {
		if !isWeakSecret(secret) {
			continue
		}
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("%s secret 过弱或仍为默认值，请在生产环境中配置强随机密钥", name)
		}
		stdLog.Printf("警告: %s secret 过弱或仍为默认值，建议在生产环境中更换", name)
	}

	// 初始化链路追踪
	shutdownTracing, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		stdLog.Fatalf("链路追踪初始化失败: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warnw("telemetry_shutdown_failed", "error", err)
		}
	}()

	// 初始化数据库
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode != "release")
	if err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	defer func() {
		if err := models.CloseDB(db); err != nil {
			logger.Warnw("database_close_failed", "error", err)
		}
	}()

	// 自动迁移数据库表
	if err := models.Migrate(db); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化默认管理员账号
	defaultAdminUser := os.Getenv("LEDGER_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("LEDGER_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("警告: 未设置 LEDGER_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
	} else if err := models.InitDefaultAdmin(db, defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		stdLog.Fatalf("依赖初始化失败: %v", err)
	}
	defer container.Close()

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:    cfg,
		Container: container,
		Logger:    logger.S(),
		Signals:   []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:      mode,
	}); err != nil {
		logger.Errorw("app_run_failed", "error", err)
		os.Exit(1)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + ansiBold + "credit-ledger" + ansiReset + ansiDim + "  prepaid credits / coupons / PIX" + ansiReset)
	fmt.Println(ansiGreen + "starting..." + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
