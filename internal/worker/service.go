package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultGaugeInterval = time.Minute

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	gaugeInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		gaugeInterval: resolveGaugeInterval(cfg),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.DashboardService != nil {
		go RunGaugeLoop(ctx, s.consumer, s.gaugeInterval)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// RunGaugeLoop 定时刷新指标，队列未启用时由 HTTP 进程调用
func RunGaugeLoop(ctx context.Context, consumer *Consumer, interval time.Duration) {
	if consumer == nil {
		return
	}
	if interval <= 0 {
		interval = defaultGaugeInterval
	}
	consumer.refreshGauges()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			consumer.refreshGauges()
		}
	}
}

func resolveGaugeInterval(cfg *config.QueueConfig) time.Duration {
	if cfg == nil || cfg.GaugeIntervalSeconds <= 0 {
		return defaultGaugeInterval
	}
	return time.Duration(cfg.GaugeIntervalSeconds) * time.Second
}
