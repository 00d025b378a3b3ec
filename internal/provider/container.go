package provider

import (
	"fmt"
	"time"

	"github.com/cyberregistro/ledger/internal/authz"
	"github.com/cyberregistro/ledger/internal/cache"
	"github.com/cyberregistro/ledger/internal/config"
	"github.com/cyberregistro/ledger/internal/events"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/payment/asaas"
	"github.com/cyberregistro/ledger/internal/queue"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	Events      events.Publisher

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	TransactionRepo repository.TransactionRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	UserAuthService    *service.UserAuthService
	CaptchaService     *service.CaptchaService
	LedgerService      *service.LedgerService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	PaymentService     *service.PaymentService
	DashboardService   *service.DashboardService
}

// NewContainer 初始化容器；db 由调用方创建并持有
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("provider db is nil")
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		logger.Warnw("provider_init_event_publisher_failed", "error", err)
		publisher = events.NoopPublisher{}
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
		Events:      publisher,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.AdminRepo = repository.NewAdminRepository(c.DB)
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.TransactionRepo = repository.NewTransactionRepository(c.DB)
	c.CouponRepo = repository.NewCouponRepository(c.DB)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(c.DB)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	statsTTL := time.Duration(c.Config.Partner.StatsCacheSeconds) * time.Second
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.LedgerService = service.NewLedgerService(c.UserRepo, c.TransactionRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo, statsTTL)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.DashboardService = service.NewDashboardService(c.UserRepo, c.CouponRepo)

	opts := service.PaymentServiceOptions{
		UserRepo:     c.UserRepo,
		TxnRepo:      c.TransactionRepo,
		CouponSvc:    c.CouponService,
		WebhookToken: c.Config.Asaas.WebhookToken,
	}
	// 接口字段只在实例非空时赋值，避免 typed nil
	if gateway := c.newGateway(); gateway != nil {
		opts.Gateway = gateway
	}
	if c.QueueClient != nil {
		opts.Enqueuer = c.QueueClient
	}
	c.PaymentService = service.NewPaymentService(opts)
	return nil
}

func (c *Container) newGateway() *asaas.Client {
	client, err := asaas.NewClient(asaas.Config{
		BaseURL: c.Config.Asaas.BaseURL,
		APIKey:  c.Config.Asaas.APIKey,
		Timeout: time.Duration(c.Config.Asaas.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Warnw("provider_init_payment_gateway_failed", "error", err)
		return nil
	}
	return client
}

// Close 释放容器持有的外部连接（数据库由调用方关闭）
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if c.Events != nil {
		if err := c.Events.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
