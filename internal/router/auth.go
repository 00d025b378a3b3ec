package router

import (
	"strings"
	"time"

	"github.com/cyberregistro/ledger/internal/authz"
	"github.com/cyberregistro/ledger/internal/cache"
	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/i18n"
	"github.com/cyberregistro/ledger/internal/logger"
	"github.com/cyberregistro/ledger/internal/repository"
	"github.com/cyberregistro/ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type authStateLoader func(id uint) (*cache.AuthState, error)

// JWTAuthMiddleware 管理端 JWT 鉴权
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	load := func(id uint) (*cache.AuthState, error) {
		admin, err := adminRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		return cache.AdminAuthState(admin), nil
	}
	return func(c *gin.Context) {
		if adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		claims := &service.JWTClaims{}
		if !authenticate(c, secretKey, claims) || claims.AdminID == 0 {
			if !c.IsAborted() {
				abortUnauthorized(c, "error.token_invalid")
			}
			return
		}
		state, ok := checkAuthState(c, cache.SubjectAdmin, claims.AdminID, claims.TokenVersion, claims.IssuedAt, load)
		if !ok {
			return
		}
		c.Set(handlershared.ContextAdminIDKey, claims.AdminID)
		c.Set(handlershared.ContextAdminIsSuperKey, state.IsSuper)
		c.Next()
	}
}

// UserJWTAuthMiddleware 用户端 JWT 鉴权，停用账号即时失效
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	load := func(id uint) (*cache.AuthState, error) {
		user, err := userRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		return cache.UserAuthState(user), nil
	}
	return func(c *gin.Context) {
		if userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		claims := &service.UserJWTClaims{}
		if !authenticate(c, secretKey, claims) || claims.UserID == 0 {
			if !c.IsAborted() {
				abortUnauthorized(c, "error.token_invalid")
			}
			return
		}
		if _, ok := checkAuthState(c, cache.SubjectUser, claims.UserID, claims.TokenVersion, claims.IssuedAt, load); !ok {
			return
		}
		c.Set(handlershared.ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板与方法做 casbin 校验，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(handlershared.ContextAdminIsSuperKey) {
			c.Next()
			return
		}
		adminID := c.GetUint(handlershared.ContextAdminIDKey)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		log := logger.SW("admin_id", adminID, "method", c.Request.Method, "path", c.Request.URL.Path)
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			log.Errorw("admin_rbac_enforce_failed", "error", err)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			log.Warnw("admin_rbac_permission_denied", "resource", authz.NormalizeObject(resource))
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate 解析 Bearer 令牌并校验 HS256 签名；失败时已写出 401
func authenticate(c *gin.Context, secretKey string, claims jwt.Claims) bool {
	if secretKey == "" {
		abortUnauthorized(c, "error.jwt_secret_missing")
		return false
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		abortUnauthorized(c, "error.auth_header_missing")
		return false
	}
	scheme, raw, found := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !found || scheme != "Bearer" || raw == "" {
		abortUnauthorized(c, "error.auth_header_invalid")
		return false
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	return err == nil && token.Valid
}

// checkAuthState 先读缓存快照，未命中时回源并回写，再核对账号状态与令牌版本
func checkAuthState(c *gin.Context, subject string, id uint, tokenVersion uint64, issuedAt *jwt.NumericDate, load authStateLoader) (*cache.AuthState, bool) {
	ctx := c.Request.Context()
	state, hit, err := cache.GetAuthState(ctx, subject, id)
	if err != nil || !hit || state == nil {
		state, err = load(id)
		if err != nil || state == nil {
			abortUnauthorized(c, "error.token_invalid")
			return nil, false
		}
		_ = cache.SetAuthState(ctx, state)
	}
	if !state.Active {
		abortUnauthorized(c, "error.user_disabled")
		return nil, false
	}
	var issued *time.Time
	if issuedAt != nil {
		issued = &issuedAt.Time
	}
	if !state.Accepts(tokenVersion, issued) {
		abortUnauthorized(c, "error.token_revoked")
		return nil, false
	}
	return state, true
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}
