// Package helpers contains small utilities shared between the server and the
// socket API.
package helpers

import (
	"net/http"
	"strings"
)

// GetRemoteFromReq returns the remote address of a client, preferring the
// X-Forwarded-For and Forwarded headers that a reverse proxy populates so we
// see the client and not the proxy.
func GetRemoteFromReq(r *http.Request) (rr string) {
	remoteAddress := r.Header.Get("X-Forwarded-For")
	if remoteAddress == "" {
		remoteAddress = r.Header.Get("Forwarded")
		if remoteAddress == "" {
			rr = r.RemoteAddr
			return
		}
		splitted := strings.Split(remoteAddress, ", ")
		if len(splitted) >= 1 {
			forwarded := strings.Split(splitted[0], "=")
			if len(forwarded) == 2 {
				// by the standard this should be the address of the client.
				rr = forwarded[1]
			}
			return
		}
	}
	splitted := strings.Split(remoteAddress, " ")
	if len(splitted) == 1 {
		rr = splitted[0]
	}
	if len(splitted) == 2 {
		sp := strings.Split(splitted[0], ",")
		rr = sp[0]
	}
	return
}
