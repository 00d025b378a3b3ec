package admin

import (
	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextAdminIDKey, "error.unauthorized", "error.unauthorized")
}

func currentAdminIsSuper(c *gin.Context) bool {
	return c.GetBool(handlershared.ContextAdminIsSuperKey)
}
