package app

import (
	"context"
	"time"

	"github.com/cyberregistro/ledger/internal/worker"
)

// GaugeService 无队列部署时的指标刷新服务
type GaugeService struct {
	consumer *worker.Consumer
	interval time.Duration
}

// NewGaugeService 创建指标刷新服务
func NewGaugeService(consumer *worker.Consumer, intervalSeconds int) *GaugeService {
	return &GaugeService{
		consumer: consumer,
		interval: time.Duration(intervalSeconds) * time.Second,
	}
}

// Name 服务名称
func (s *GaugeService) Name() string {
	return "gauges"
}

// Start 阻塞运行直到 ctx 取消
func (s *GaugeService) Start(ctx context.Context) error {
	worker.RunGaugeLoop(ctx, s.consumer, s.interval)
	return nil
}

// Stop 运行器取消 ctx 后循环自行退出
func (s *GaugeService) Stop(context.Context) error {
	return nil
}
