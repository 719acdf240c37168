// Package bufpool provides a sync.Pool of reusable byte buffers for
// JSON-RPC frame encoding, trimmed from the DNS message/buffer pools
// in internal/pool/buffers.go down to the one shape this system
// needs: one scratch buffer per encode, handed back
// immediately after the frame is written to the wire. The dns.Msg pool
// and the size-tiered small/medium/large buffer pools have no analog
// here — JSON-RPC frames are small and variably sized, so a single
// pool of growable buffers, reset between uses, replaces them.
package bufpool

import (
	"bytes"
	"sync"
)

// initialCapacity is a reasonable starting size for a JSON-RPC frame;
// buffers that grow past it keep their larger capacity on return to
// the pool instead of being reallocated on every call.
const initialCapacity = 512

var pool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialCapacity))
	},
}

// Get returns an empty *bytes.Buffer ready to be written into.
func Get() *bytes.Buffer {
	return pool.Get().(*bytes.Buffer)
}

// Put resets buf and returns it to the pool.
func Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	pool.Put(buf)
}
