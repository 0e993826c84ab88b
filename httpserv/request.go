package httpserv

import (
	"io"

	"github.com/pkg/errors"

	"github.com/zbqxyz/ESP-AT-Lib/mempool"
	"github.com/zbqxyz/ESP-AT-Lib/netconn"
	"github.com/zbqxyz/ESP-AT-Lib/optionals"
	"github.com/zbqxyz/ESP-AT-Lib/segchain"
)

type Method int

const (
	MethodUnsupported Method = iota
	MethodGet
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	}
	return "UNSUPPORTED"
}

// reassembler accumulates the deliveries of one connection into a segment
// chain and drives request parsing over it. The chain references the delivery
// buffers in held; release returns all of them to the pool.
//
// State is private to one connection's handler; there is no sharing between
// connections.
type reassembler struct {
	conn  netconn.Conn
	chain segchain.Chain
	held  []mempool.Buffer

	// Set when a receive reported an orderly close, in which case the
	// handler must not attempt an explicit close of its own.
	peerClosed bool
}

// receive blocks for the next delivery and appends it to the chain. The
// delivery's buffer is retained until release.
func (r *reassembler) receive() error {
	buf, err := r.conn.Receive()
	if err != nil {
		if errors.Is(err, netconn.ErrClosed) {
			r.peerClosed = true
		}
		return err
	}
	r.held = append(r.held, buf)
	r.chain.Append(buf.Bytes())
	return nil
}

// release drops the accumulated chain and returns every retained delivery
// buffer to the pool. Called unconditionally on every exit path.
func (r *reassembler) release() {
	r.chain.Clear()
	for _, buf := range r.held {
		buf.Release()
	}
	r.held = nil
}

// awaitHeaders receives deliveries until the accumulated chain contains the
// header terminator. Returns the offset of the first byte past the
// terminator. An orderly close before the terminator is ErrIncompleteRequest;
// any other receive failure is returned as a transport error.
func (r *reassembler) awaitHeaders() (int64, error) {
	for {
		if err := r.receive(); err != nil {
			if errors.Is(err, netconn.ErrClosed) {
				return 0, ErrIncompleteRequest
			}
			return 0, err
		}
		if pos := r.chain.Index(0, headerTerminator); pos >= 0 {
			return pos + int64(len(headerTerminator)), nil
		}
	}
}

// classifyMethod compares the first bytes of the chain against the supported
// verbs.
func (r *reassembler) classifyMethod() Method {
	switch {
	case r.chain.HasPrefixAt(0, literalGet):
		return MethodGet
	case r.chain.HasPrefixAt(0, literalPost):
		return MethodPost
	}
	return MethodUnsupported
}

// parseTarget extracts the request-target into a connection-scoped string.
// The first space must sit at offset 3 or 4, right after the verb. A request
// line without a version token (HTTP/0.9 style) ends the target at the first
// CRLF instead of a second space.
func (r *reassembler) parseTarget() (string, error) {
	first := r.chain.Index(0, space)
	if first != 3 && first != 4 {
		return "", ErrMalformedRequestLine
	}
	crlfPos := r.chain.Index(0, crlf)
	if crlfPos < 0 {
		return "", ErrMalformedRequestLine
	}
	end := r.chain.Index(first+1, space)
	if end < 0 {
		end = crlfPos
	}
	n := end - first - 1
	if n < 0 {
		return "", ErrMalformedRequestLine
	}
	if n > maxTargetLength {
		return "", ErrTargetTooLong
	}
	return string(r.chain.Slice(first+1, end)), nil
}

// contentLength scans the buffered headers for a Content-Length field and
// parses its decimal value. The scan starts right after the field name,
// skips at most one space, and stops at the first non-digit.
func (r *reassembler) contentLength() optionals.Optional[uint64] {
	pos := r.chain.Index(0, contentLengthCanonical)
	if pos < 0 {
		pos = r.chain.Index(0, contentLengthLower)
	}
	if pos < 0 {
		return optionals.None[uint64]()
	}

	pos += int64(len(contentLengthCanonical))
	if ch, ok := r.chain.ByteAt(pos); ok && ch == ' ' {
		pos++
	}
	var n uint64
	for {
		ch, ok := r.chain.ByteAt(pos)
		if !ok || ch < '0' || ch > '9' {
			break
		}
		n = n*10 + uint64(ch-'0')
		pos++
	}
	return optionals.Some(n)
}

// streamBody forwards body bytes to sink, one call per contiguous linear
// run, until the expected count reaches zero. Bytes already buffered past
// bodyStart are forwarded first; further deliveries are forwarded and
// released immediately, without joining the header chain. A transport
// failure or close mid-body ends the stream early; whatever was delivered is
// accepted silently.
//
// Returns the number of body bytes forwarded.
func (r *reassembler) streamBody(bodyStart int64, want uint64, sink io.Writer) uint64 {
	var delivered uint64
	forward := func(run []byte) {
		if sink != nil {
			_, _ = sink.Write(run)
		}
		delivered += uint64(len(run))
		if want > uint64(len(run)) {
			want -= uint64(len(run))
		} else {
			want = 0
		}
	}

	for off := bodyStart; ; {
		run := r.chain.LinearRun(off)
		if run == nil {
			break
		}
		forward(run)
		off += int64(len(run))
	}

	for want > 0 {
		buf, err := r.conn.Receive()
		if err != nil {
			if errors.Is(err, netconn.ErrClosed) {
				r.peerClosed = true
			}
			break
		}
		delta := buf.Bytes()
		for off := int64(0); ; {
			run := delta.LinearRun(off)
			if run == nil {
				break
			}
			forward(run)
			off += int64(len(run))
		}
		buf.Release()
	}
	return delivered
}
