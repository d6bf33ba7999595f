package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-account-api/internal/core/logger"
	mdw "user-account-api/internal/transport/http/middleware"
)

// NewRouter returns a bare engine with panic recovery and permissive CORS.
func NewRouter(l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(mdw.Recovery(l))
	r.Use(cors.Default())
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

// BuildServer routes net/http's own error log into l.
func BuildServer(l *zap.Logger, addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20,
	}
	if el, err := logger.ToStdLogger(l, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = el
	}
	return srv
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
