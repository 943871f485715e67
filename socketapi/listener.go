package socketapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/atomic"

	"seqrelay.dev/helpers"
)

// Listener is the websocket implementation of a relay client connection. A
// write mutex keeps concurrently delivered frames from interleaving on the
// transport.
type Listener struct {
	mutex   sync.Mutex
	ctx     context.Context
	conn    *websocket.Conn
	request *http.Request
	remote  atomic.String
}

// NewListener wraps an accepted websocket connection. ctx bounds all writes
// and is cancelled when the connection handler returns.
func NewListener(
	ctx context.Context, conn *websocket.Conn, req *http.Request,
) (ws *Listener) {
	ws = &Listener{ctx: ctx, conn: conn, request: req}
	rr := helpers.GetRemoteFromReq(req)
	if rr == "" {
		rr = req.RemoteAddr
	}
	ws.remote.Store(rr)
	return
}

// Write sends one text frame to the client.
func (ws *Listener) Write(p []byte) (n int, err error) {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	if err = ws.conn.Write(ws.ctx, websocket.MessageText, p); err != nil {
		return
	}
	n = len(p)
	return
}

// Remote returns the stored remote address of the client.
func (ws *Listener) Remote() string { return ws.remote.Load() }

// Req returns the http.Request associated with the connection.
func (ws *Listener) Req() *http.Request { return ws.request }

// Close the connection from the relay side.
func (ws *Listener) Close() (err error) {
	return ws.conn.Close(websocket.StatusNormalClosure, "")
}
