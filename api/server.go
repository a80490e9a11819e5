package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"contract-kit/api/controllers"
	"contract-kit/api/routes"
	"contract-kit/config"
	"contract-kit/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine serving the registry.
func NewEngine(conf config.EnvConfig, summaries controllers.SummaryLoader) *gin.Engine {
	app := gin.New()
	app.Use(gin.Recovery())
	return routes.InitRoute(app, conf, summaries)
}

// Serve 启动 HTTP 服务，ctx 结束时优雅退出
func Serve(ctx context.Context, conf config.EnvConfig, summaries controllers.SummaryLoader) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + conf.Port,
		Handler: NewEngine(conf, summaries),
	}

	errc := make(chan error, 1)
	go func() {
		log.Logger.Info("api listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
