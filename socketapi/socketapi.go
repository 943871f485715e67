// Package socketapi accepts websocket connections and dispatches the framed
// JSON-array commands of the protocol: EVENT, REQ, CLOSE, CHANGES, LASTSEQ,
// CHANGES_SUB and CHANGES_UNSUB.
package socketapi

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"seqrelay.dev/helpers"
	"seqrelay.dev/interfaces/server"
	"seqrelay.dev/relayinfo"
)

// readLimit is the maximum inbound frame size.
const readLimit = 512 * 1024

// A is the socket API handler.
type A struct {
	server.I
}

// New mounts the socket API on the router at path.
func New(s server.I, path string, mux *chi.Mux) (a *A) {
	a = &A{I: s}
	mux.Handle(path, a)
	return
}

// ServeHTTP processes the initial request: clients that ask for the
// capability content type get the relay info document and no upgrade,
// everything else is upgraded to a websocket and enters the frame loop.
func (a *A) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	remote := helpers.GetRemoteFromReq(r)
	if r.Header.Get("Upgrade") != "websocket" {
		// the info document is also the fallback for plain GETs
		if r.Header.Get("Accept") == relayinfo.ContentType {
			log.WithField("remote", remote).Debug("serving relay info")
		}
		a.HandleRelayInfo(w, r)
		return
	}
	conn, err := websocket.Accept(
		w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}},
	)
	if err != nil {
		log.WithError(err).WithField("remote", remote).
			Debug("websocket accept failed")
		return
	}
	conn.SetReadLimit(readLimit)
	ctx, cancel := context.WithCancel(a.Context())
	lis := NewListener(ctx, conn, r)
	log.WithField("remote", lis.Remote()).Debug("client connected")
	defer func() {
		cancel()
		a.Publisher().RemoveListener(lis)
		conn.Close(websocket.StatusNormalClosure, "")
		log.WithField("remote", lis.Remote()).Debug("client disconnected")
	}()
	for {
		// binary frames are decoded as UTF-8 JSON the same as text
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) < 0 && ctx.Err() == nil {
				log.WithError(err).WithField("remote", lis.Remote()).
					Debug("read failed")
			}
			return
		}
		a.HandleMessage(ctx, lis, msg)
	}
}
