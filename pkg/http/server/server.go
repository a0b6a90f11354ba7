package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          int
	WebsocketPort int
	Timeout       time.Duration
}

// New. http server for handler. websocket servers keep connections open, so they get neither a request
// timeout nor a write timeout.
func New(ctx context.Context, handler http.Handler, config Config, websocket bool) *http.Server {
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "2s")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}
	if websocket {
		srv.Addr = fmt.Sprintf(":%d", config.WebsocketPort)
		return srv
	}

	srv.Handler = http.TimeoutHandler(handler, config.Timeout, "request timed out")
	srv.ReadTimeout = viper.GetDuration("HTTP_SERVER_READ_TIMEOUT")
	srv.WriteTimeout = config.Timeout + viper.GetDuration("HTTP_SERVER_WRITE_TIMEOUT")
	return srv
}
