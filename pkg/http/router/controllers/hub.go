package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"go.uber.org/zap"
)

var errMalformedReport = errors.New("message must be a valid avl report json")

// User. one websocket connection streaming avl reports.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

// readRequest. nil request without error when the frame was a control frame.
func (u *User) readRequest() (*spatialMatchRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	req := &spatialMatchRequest{}
	if err := json.Unmarshal(payload, req); err != nil {
		return nil, errMalformedReport
	}
	return req, nil
}

// SpatialMatch. read one avl report from the connection and write back its spatial matches.
// a malformed or invalid report gets an error message, the connection stays open.
func (u *User) SpatialMatch(ctx context.Context) error {
	req, err := u.readRequest()
	if err != nil {
		if errors.Is(err, errMalformedReport) {
			return u.writeError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	if req == nil {
		return nil
	}

	if err := validateRequest(req); err != nil {
		return u.writeError(http.StatusBadRequest, err.Error())
	}

	result, err := u.hub.mapMatcherService.ProcessReport(ctx, req.ToGPSPoint(), req.BlockId)
	if err != nil {
		status := statusCodeOf(err)
		if status == http.StatusInternalServerError {
			u.hub.log.Error("websocket spatial match failed", zap.Error(err),
				zap.String("vehicleId", req.VehicleId))
			return u.writeError(status, util.MessageInternalServerError)
		}
		return u.writeError(status, err.Error())
	}

	return u.write(envelope{"data": NewSpatialMatchesResponse(result)})
}

func (u *User) writeError(status int, message string) error {
	return u.write(envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": message,
	}})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Serve. handle reports until the connection fails or ctx is done, then remove the user from the hub.
func (u *User) Serve(ctx context.Context) error {
	defer u.hub.Remove(u)
	for {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		if err := u.SpatialMatch(ctx); err != nil {
			return err
		}
	}
}

type Hub struct {
	mu  sync.RWMutex
	seq uint
	us  []*User
	ns  map[uint]*User

	mapMatcherService MapMatcherService
	log               *zap.Logger
}

func NewHub(mapMatcherService MapMatcherService, log *zap.Logger) *Hub {
	return &Hub{
		ns:                make(map[uint]*User),
		us:                make([]*User, 0),
		mapMatcherService: mapMatcherService,
		log:               log,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

// Remove. close the user connection, removing twice is a no-op.
func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	// us is sorted by id
	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	_ = user.conn.Close()
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}
