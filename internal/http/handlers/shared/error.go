package shared

import (
	"github.com/cyberregistro/ledger/internal/http/response"
	"github.com/cyberregistro/ledger/internal/i18n"
	"github.com/cyberregistro/ledger/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			kv = append(kv, "request_id", id)
		}
	}
	if c.Request != nil {
		kv = append(kv, logger.TraceFields(c.Request.Context())...)
	}
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	RespondErrorWithMsg(c, code, i18n.T(locale, key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// RespondErrorWithData 返回带业务字段的国际化错误响应。
func RespondErrorWithData(c *gin.Context, code int, key string, data gin.H) {
	locale := i18n.ResolveLocale(c)
	response.ErrorWithData(c, code, i18n.T(locale, key), data)
}

// RespondPolicyError 密码策略等带参数的错误。
func RespondPolicyError(c *gin.Context, code int, err error, fallbackKey string) {
	locale := i18n.ResolveLocale(c)
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		RespondErrorWithMsg(c, code, i18n.Sprintf(locale, perr.Key(), perr.Args()...), nil)
		return
	}
	RespondError(c, code, fallbackKey, nil)
}
