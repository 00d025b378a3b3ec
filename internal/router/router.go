package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cyberregistro/ledger/internal/authz"
	"github.com/cyberregistro/ledger/internal/cache"
	"github.com/cyberregistro/ledger/internal/config"
	adminhandlers "github.com/cyberregistro/ledger/internal/http/handlers/admin"
	publichandlers "github.com/cyberregistro/ledger/internal/http/handlers/public"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按用户侧/管理端分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ledger"
	}
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(fmt.Sprintf("%s:rate:login", redisPrefix), cfg.Security.LoginRateLimit, "error.login_too_many")
	adminLoginRule := NewRateLimitRule(fmt.Sprintf("%s:rate:admin_login", redisPrefix), cfg.Security.LoginRateLimit, "error.login_too_many")
	validateRule := NewRateLimitRule(fmt.Sprintf("%s:rate:coupon_validate", redisPrefix), cfg.Security.ValidateRateLimit, "error.rate_limited")

	// 中间件
	r.Use(gin.Recovery())
	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	// 账号
	auth := r.Group("/auth")
	{
		auth.POST("/register", publicHandler.Register)
		auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		auth.GET("/captcha", publicHandler.GetCaptcha)
	}

	// 网关回调与合作方看板（无需登录）
	r.POST("/webhooks/payment-gateway", publicHandler.PaymentWebhook)
	r.POST("/webhooks/asaas", publicHandler.PaymentWebhook)
	r.GET("/partner/coupon/:token", publicHandler.GetPartnerCouponStats)

	// 用户接口
	user := r.Group("")
	user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	{
		user.GET("/me", publicHandler.GetMe)
		user.GET("/credits", publicHandler.GetCredits)
		user.POST("/credits/check", publicHandler.CheckCredits)
		user.POST("/credits/debit", publicHandler.DebitCredits)
		user.GET("/transactions", publicHandler.ListTransactions)
		user.POST("/cupons/validate", RateLimitMiddleware(redisClient, validateRule, KeyByUserID), publicHandler.ValidateCoupon)
		user.POST("/payments/pix", publicHandler.CreatePix)
		user.GET("/payments/status", publicHandler.GetPaymentStatus)
		user.POST("/payments/complete", publicHandler.CompletePayment)
	}

	// 管理员登录（无需鉴权）
	r.POST("/admin/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

	// 管理端接口：JWT + RBAC
	authorized := r.Group("")
	authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
	{
		authorized.GET("/cupons", adminHandler.ListCoupons)
		authorized.POST("/cupons", adminHandler.CreateCoupon)
		authorized.PATCH("/cupons/:id", adminHandler.UpdateCoupon)
		authorized.POST("/credits/add", adminHandler.AddCredits)

		authorized.GET("/admin/dashboard", adminHandler.GetDashboard)
		authorized.GET("/admin/me", adminHandler.GetAuthzMe)
		authorized.GET("/admin/authz/roles", adminHandler.ListAuthzRoles)
		authorized.GET("/admin/authz/admins/:id/roles", adminHandler.GetAdminRoles)
		authorized.PUT("/admin/authz/admins/:id/roles", adminHandler.SetAdminRoles)
		authorized.GET("/admin/authz/permissions/catalog", func(ctx *gin.Context) {
			response.OK(ctx, gin.H{"permissions": buildAdminPermissionCatalog(r)})
		})
	}

	// 运维
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(ctx *gin.Context) {
		if c.DB != nil {
			if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
				ctx.JSON(503, gin.H{"status": "degraded"})
				return
			}
		}
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// isAdminGuardedPath 受 RBAC 保护的路由模板
func isAdminGuardedPath(path string) bool {
	switch path {
	case "/admin/login", "/cupons/validate":
		return false
	case "/cupons", "/cupons/:id", "/credits/add":
		return true
	}
	return strings.HasPrefix(path, "/admin/")
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !isAdminGuardedPath(item.Path) {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
