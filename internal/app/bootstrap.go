package app

import (
	"errors"
	"fmt"
	"net"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/provider"
	"github.com/cyberregistro/ledger/internal/router"
	"github.com/cyberregistro/ledger/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}

	var services []Service

	if servesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	// 队列未启用时 worker 只保留指标刷新
	if servesWorker(mode) {
		consumer := worker.NewConsumer(container)
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Warnw("app_queue_disabled", "mode", mode, "fallback", "gauge_loop_only")
			services = append(services, NewGaugeService(consumer, cfg.Queue.GaugeIntervalSeconds))
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("unknown run mode %q", mode)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if opts.Container == nil {
		return errors.New("container is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Container, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}
