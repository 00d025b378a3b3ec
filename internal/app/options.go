package app

import (
	"os"
	"time"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/provider"

	"go.uber.org/zap"
)

// 进程运行模式：api 只提供 HTTP，worker 只消费队列与刷新指标
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 启动选项，Container 由调用方创建并负责关闭
type Options struct {
	Config          *config.Config
	Container       *provider.Container
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

func servesHTTP(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

func servesWorker(mode string) bool {
	return mode == ModeAll || mode == ModeWorker
}
