package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lintang-b-s/transitmatch/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/transitmatch/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/transitmatch/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
)

type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

func newCorsHandler() *cors.Cors {
	return cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})
}

// Handler. rest api router wrapped in the middleware chain.
func (api *API) Handler(useRateLimit bool, mapMatcherService controllers.MapMatcherService,
	metricsHandler http.Handler) http.Handler {
	router := httprouter.New()

	router.GET("/doc/*any", swaggerHandler)
	if metricsHandler != nil {
		router.Handler(http.MethodGet, "/metrics", metricsHandler)
	}

	group := router_helper.NewRouteGroup(router, "/api")

	spatialMatchRoutes := controllers.New(mapMatcherService, api.log)
	spatialMatchRoutes.Routes(group)

	mwChain := []alice.Constructor{newCorsHandler().Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Labels, Heartbeat("healthz"), Logger(api.log)}
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	return alice.New(mwChain...).Then(router)
}

//	@title			transitmatch API
//	@version		1.0
//	@description	spatial matcher of transit vehicle avl reports to the trips of their block.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,

	useRateLimit bool,
	mapMatcherService controllers.MapMatcherService,
	metricsHandler http.Handler,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(useRateLimit, mapMatcherService, metricsHandler), config, false)
	wsSrv := http_server.New(ctx, api.websocketHandler(ctx, mapMatcherService), config, true)

	serverErr := make(chan error, 1)
	wsErr := make(chan error, 1)
	go func() {
		api.log.Info(fmt.Sprintf("API run on port %d", config.Port))
		serverErr <- srv.ListenAndServe()
	}()
	go func() {
		api.log.Info(fmt.Sprintf("spatial match websocket API run on port %d", config.WebsocketPort))
		wsErr <- wsSrv.ListenAndServe()
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = wsSrv.Shutdown(shutdownCtx)
		api.hub.RemoveAllUser()
	}

	select {
	case err := <-wsErr:
		api.log.Error("Websocket error, shutting down server", zap.Error(err))
		shutdown()
		return err
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdown()
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
