package core

import "errors"

// Frame is one encoded outbound message.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; Close flushes queued frames and then drops the transport.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
