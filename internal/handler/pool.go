package handler

import (
	"bytes"
	"sync"
)

// Buffer sizing for JSON responses. A full battle snapshot with round scores
// runs about a kilobyte; event-log replays can be far larger, so oversized
// buffers are dropped instead of pooled.
const (
	responseBufferInitialBytes = 1024
	responseBufferMaxBytes     = 64 * 1024
)

// bufferPool recycles encode buffers across requests
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, responseBufferInitialBytes))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns a buffer to the pool unless a large replay response grew
// it past the retention cap
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > responseBufferMaxBytes {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
