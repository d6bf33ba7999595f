package middleware

import (
	"fmt"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-account-api/internal/domain"
	resp "user-account-api/internal/transport/http/response"
)

// Recovery logs panics with stack through zap and answers with the generic 500 body.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, rec any) {
		resp.Fail(c, domain.Internal("panic", fmt.Errorf("%v", rec)))
	})
}
