package service

import (
	"time"

	"github.com/cyberregistro/ledger/internal/metrics"
	"github.com/cyberregistro/ledger/internal/repository"
)

// DashboardService 账本概览
type DashboardService struct {
	userRepo   repository.UserRepository
	couponRepo repository.CouponRepository
}

// DashboardOverview 账本概览数据
type DashboardOverview struct {
	OutstandingCredits int64     `json:"outstanding_credits"`
	ActiveCoupons      int64     `json:"active_coupons"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// NewDashboardService 创建概览服务
func NewDashboardService(userRepo repository.UserRepository, couponRepo repository.CouponRepository) *DashboardService {
	return &DashboardService{userRepo: userRepo, couponRepo: couponRepo}
}

// Overview 统计未消费积分与可用优惠券
func (s *DashboardService) Overview(now time.Time) (*DashboardOverview, error) {
	credits, err := s.userRepo.SumCredits()
	if err != nil {
		return nil, err
	}
	active, err := s.couponRepo.CountActive(now)
	if err != nil {
		return nil, err
	}
	return &DashboardOverview{
		OutstandingCredits: credits,
		ActiveCoupons:      active,
		GeneratedAt:        now,
	}, nil
}

// RefreshGauges 刷新账本 Prometheus 指标
func (s *DashboardService) RefreshGauges(now time.Time) (*DashboardOverview, error) {
	overview, err := s.Overview(now)
	if err != nil {
		return nil, err
	}
	metrics.OutstandingCredits.Set(float64(overview.OutstandingCredits))
	metrics.ActiveCoupons.Set(float64(overview.ActiveCoupons))
	return overview, nil
}
