package mempool

import (
	"io"

	"github.com/pkg/errors"

	"github.com/zbqxyz/ESP-AT-Lib/segchain"
)

var ErrEmptyPool = errors.New("mempool: pool is empty")

// A variable-sized buffer whose backing storage is drawn from a fixed-sized
// pool. One Buffer holds the bytes of one (or more) transport deliveries.
// Clients must return the backing storage to the pool by calling Release.
type Buffer interface {
	// Returns a segment chain over the buffer's contents. The chain references
	// the buffer's storage directly and is valid only until the next buffer
	// modification or Release.
	Bytes() segchain.Chain

	// Returns the number of bytes held; Len() == Bytes().Len().
	Len() int

	// Empties the buffer and returns its storage to the pool.
	Release()

	// ReadOnce performs exactly one Read from r into pooled storage and
	// appends the bytes read to the buffer. Returns the number of bytes read
	// and any error from the Read. Returns ErrEmptyPool if no storage could
	// be obtained.
	ReadOnce(r io.Reader) (int, error)

	// Write appends p to the buffer, obtaining additional storage from the
	// pool as needed. Returns ErrEmptyPool if the write stopped early.
	io.Writer
}

type buffer struct {
	pool chunkPool

	// Contents occupy chunks[0][0:...] through
	// chunks[len(chunks)-1][:writeOffset]. Every chunk except possibly the
	// last is full.
	chunks      [][]byte
	writeOffset int
}

var _ Buffer = (*buffer)(nil)

func (b *buffer) Bytes() segchain.Chain {
	var chain segchain.Chain
	for i, chunk := range b.chunks {
		if i == len(b.chunks)-1 {
			chunk = chunk[:b.writeOffset]
		}
		chain.Append(segchain.New(chunk))
	}
	return chain
}

func (b *buffer) Len() int {
	if len(b.chunks) == 0 {
		return 0
	}
	return (len(b.chunks)-1)*b.pool.chunkSize + b.writeOffset
}

func (b *buffer) Release() {
	if b == nil {
		return
	}
	b.pool.release(b.chunks)
	b.chunks = nil
	b.writeOffset = 0
}

// Ensures the last chunk has at least one writable byte. Returns false if the
// pool is exhausted.
func (b *buffer) grow() bool {
	if len(b.chunks) > 0 && b.writeOffset < b.pool.chunkSize {
		return true
	}
	chunk := b.pool.get()
	if chunk == nil {
		return false
	}
	b.chunks = append(b.chunks, chunk)
	b.writeOffset = 0
	return true
}

func (b *buffer) ReadOnce(r io.Reader) (int, error) {
	if !b.grow() {
		return 0, ErrEmptyPool
	}
	last := b.chunks[len(b.chunks)-1]
	n, err := r.Read(last[b.writeOffset:])
	if n < 0 {
		panic("mempool: reader returned negative count from Read")
	}
	b.writeOffset += n
	return n, err
}

func (b *buffer) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if !b.grow() {
			return written, ErrEmptyPool
		}
		last := b.chunks[len(b.chunks)-1]
		n := copy(last[b.writeOffset:], p[written:])
		b.writeOffset += n
		written += n
	}
	return written, nil
}
