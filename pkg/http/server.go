package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/transitmatch/pkg/http/router"
	"github.com/lintang-b-s/transitmatch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/transitmatch/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func SetConfigDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("API_TIMEOUT", "30s")
}

func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	mapMatcherService controllers.MapMatcherService,
	metricsHandler http.Handler,
) (*Server, error) {
	SetConfigDefaults()

	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(
			gctx, config,
			useRateLimit, mapMatcherService, metricsHandler,
		)
	})
	s.g = g

	return s, nil
}

// Wait. blocks until the api servers stopped.
func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

// GracefulShutdown. blocks until SIGINT or SIGTERM.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return <-quit
}
