package mempool

import (
	"fmt"
)

// A factory of buffers whose backing storage is drawn from a fixed-sized
// pool. Clients must return the storage of every buffer obtained from the
// pool by calling Release on the buffer.
type BufferPool interface {
	// Returns a new empty buffer.
	NewBuffer() Buffer
}

// Creates a new buffer pool holding up to maxPoolSize bytes of chunks, each
// chunk chunkSize bytes.
func MakeBufferPool(maxPoolSize, chunkSize int64) (BufferPool, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("invalid chunkSize %d", chunkSize)
	}
	if maxPoolSize < chunkSize {
		return nil, fmt.Errorf("invalid maxPoolSize %d", maxPoolSize)
	}

	numChunks := maxPoolSize / chunkSize
	chunks := make(chan []byte, numChunks)
	for count := int64(0); count < numChunks; count++ {
		chunks <- make([]byte, chunkSize)
	}

	return chunkPool{
		chunks:    chunks,
		chunkSize: int(chunkSize),
	}, nil
}

type chunkPool struct {
	// All available chunks.
	chunks chan []byte

	// The size of each chunk, in bytes.
	chunkSize int
}

var _ BufferPool = (*chunkPool)(nil)

func (pool chunkPool) NewBuffer() Buffer {
	return &buffer{pool: pool}
}

// Obtains a chunk from the pool. Returns nil if the pool is empty.
func (pool chunkPool) get() []byte {
	select {
	case chunk := <-pool.chunks:
		return chunk
	default:
		return nil
	}
}

// Releases the given chunks back to the pool. Does not block if somehow more
// chunks are released than were allocated.
func (pool chunkPool) release(chunks [][]byte) {
	for _, chunk := range chunks {
		select {
		case pool.chunks <- chunk:
		default:
			return
		}
	}
}
