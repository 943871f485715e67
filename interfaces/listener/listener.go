// Package listener defines the interface of a client connection as seen by
// the publisher and the envelope writers.
package listener

import "io"

// I is a client connection. Write sends one complete frame; implementations
// serialize concurrent writes so frames do not interleave.
type I interface {
	io.Writer
	// Remote returns the remote address of the client for logging.
	Remote() string
	// Close tears down the connection.
	Close() (err error)
}
