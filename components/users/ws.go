// components/users/ws.go
//
// Live event channel.  The page script opens /form/{sid}/ws?csrf=<token>
// and sends one JSON wireEvent per input, blur, or click.  Each event is
// answered with a wsReply carrying the re-rendered fragment and a JSON
// snapshot of the state, so the browser never evaluates a rule itself.
// When the socket cannot be opened the script falls back to
// POST /form/{sid}/event.
//
//------------------------------------------------------------------------------

package users

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/session"
)

const (
	wsReadLimit  = 8 << 10 // one event; values are short strings
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
)

// wsReply answers one event.  A successful event carries the fragment and
// the matching snapshot; otherwise only Redirect or Error is set.
type wsReply struct {
	HTML     string    `json:"html,omitempty"`
	State    *snapshot `json:"state,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Same-origin only; the zero CheckOrigin compares Origin with Host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

func (c *Component) handleWS(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	e, err := c.store.Get(sid)
	if err != nil {
		http.Error(w, "form session not found", http.StatusNotFound)
		return
	}
	if !c.signer.Verify(r.URL.Query().Get("csrf"), e.ID) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied
	}
	defer conn.Close()

	log := zap.S().With("session", e.ID)
	log.Debugw("ws connected")

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go c.wsPing(conn, done)

	for {
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugw("ws read failed", "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		reply := c.wsHandle(r, e, ev)
		if err := c.wsWrite(conn, reply); err != nil {
			log.Debugw("ws write failed", "err", err)
			return
		}
		if reply.Redirect != "" {
			return
		}
	}
}

// wsHandle runs one event and builds the reply.
func (c *Component) wsHandle(r *http.Request, e *session.Entry, ev wireEvent) wsReply {
	if !e.Allow() {
		return wsReply{Error: session.ErrRateLimited.Error()}
	}
	if err := c.dispatch(r, e, ev); err != nil {
		if clientError(err) {
			return wsReply{Error: err.Error()}
		}
		zap.S().Errorw("form event failed", "session", e.ID, "err", err)
		return wsReply{Error: "internal error"}
	}
	if e.Finished() {
		next := c.handOver(e)
		// The cookie cannot be set over a socket; the redirect target
		// reads the new id from the query.
		return wsReply{Redirect: "/?sid=" + next.ID}
	}

	snap := newSnapshot(e.ID, e.State())
	frag, err := c.fragment(e)
	if err != nil {
		zap.S().Errorw("fragment render failed", "session", e.ID, "err", err)
		return wsReply{Error: "internal error"}
	}
	return wsReply{HTML: string(frag), State: &snap}
}

// wsPing keeps intermediaries from closing an idle socket.  Control frames
// may be written concurrently with WriteJSON, unlike data frames.
func (c *Component) wsPing(conn *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(wsPingPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (c *Component) wsWrite(conn *websocket.Conn, reply wsReply) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(reply)
}
