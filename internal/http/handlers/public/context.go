package public

import (
	handlershared "github.com/cyberregistro/ledger/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextUserIDKey, "error.user_id_invalid", "error.user_id_type_invalid")
}

func resolveActingUserID(c *gin.Context, requested *uint) (uint, bool) {
	return handlershared.ResolveActingUserID(c, requested)
}
