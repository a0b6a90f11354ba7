package router

import (
	"context"
	"net"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/transitmatch/pkg/http/router/controllers"
	"go.uber.org/zap"
)

// websocketHandler. GET /ws upgrades to a websocket that takes one avl report per text message and
// answers each with its spatial matches.
func (api *API) websocketHandler(ctx context.Context, mapMatcherService controllers.MapMatcherService) http.Handler {
	api.hub = controllers.NewHub(mapMatcherService, api.log)

	wsRouter := httprouter.New()
	wsRouter.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		api.handle(ctx, w, r)
	})

	return alice.New(newCorsHandler().Handler, api.recoverPanic, RealIP, Labels, Heartbeat("healthz"),
		Logger(api.log)).Then(wsRouter)
}

func (api *API) handle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, _, hs, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("remoteAddr", r.RemoteAddr))
		return
	}

	api.log.Info("established websocket connection", zap.String("connection", nameConn(conn)),
		zap.String("protocol", hs.Protocol), zap.String("requestId", RequestIdFromContext(r.Context())))

	user := api.hub.Register(conn)
	go func() {
		if err := user.Serve(ctx); err != nil {
			api.log.Info("websocket connection closed", zap.String("connection", nameConn(conn)), zap.Error(err))
		}
	}()
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
