// Package netconn provides the blocking connection primitive the HTTP server
// runs on: accept a connection, receive one delivery at a time into pooled
// buffers, write a response, close.
package netconn

import (
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zbqxyz/ESP-AT-Lib/mempool"
)

// Returned by Conn.Receive when the peer has closed the connection in an
// orderly fashion. Distinguished from other receive failures because the
// handler must not attempt an explicit close afterwards.
var ErrClosed = errors.New("netconn: connection closed by peer")

// A Listener accepts connections for the serve loop.
type Listener interface {
	// Blocks until a new connection arrives.
	Accept() (Conn, error)

	Addr() net.Addr
	Close() error
}

// A Conn is one accepted connection. Data arrives as discrete deliveries,
// each backed by pooled storage that the receiver owns and must Release.
type Conn interface {
	// Uniquely identifies this connection.
	ID() uuid.UUID

	RemoteAddr() net.Addr

	// Blocks until the next delivery of data, the peer closing the
	// connection (ErrClosed), or a transport failure. On success the caller
	// owns the returned buffer and must Release it.
	Receive() (mempool.Buffer, error)

	Write(p []byte) (int, error)
	Close() error
}

// Listen opens a TCP listener whose accepted connections receive into
// buffers drawn from pool.
func Listen(addr string, pool mempool.BufferPool) (Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return &tcpListener{l: l, pool: pool}, nil
}

type tcpListener struct {
	l    net.Listener
	pool mempool.BufferPool
}

func (t *tcpListener) Accept() (Conn, error) {
	c, err := t.l.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "accept failed")
	}
	return NewConn(c, t.pool), nil
}

func (t *tcpListener) Addr() net.Addr { return t.l.Addr() }
func (t *tcpListener) Close() error   { return t.l.Close() }

// NewConn wraps an established net.Conn. Exposed so tests and alternative
// transports can feed the server through net.Pipe or similar.
func NewConn(c net.Conn, pool mempool.BufferPool) Conn {
	return &tcpConn{
		id:   uuid.New(),
		c:    c,
		pool: pool,
	}
}

type tcpConn struct {
	id   uuid.UUID
	c    net.Conn
	pool mempool.BufferPool
}

var _ Conn = (*tcpConn)(nil)

func (t *tcpConn) ID() uuid.UUID        { return t.id }
func (t *tcpConn) RemoteAddr() net.Addr { return t.c.RemoteAddr() }

func (t *tcpConn) Receive() (mempool.Buffer, error) {
	buf := t.pool.NewBuffer()
	for {
		n, err := buf.ReadOnce(t.c)
		if n > 0 {
			// Any error alongside the data will resurface on the next Receive.
			return buf, nil
		}
		if err == io.EOF {
			buf.Release()
			return nil, ErrClosed
		}
		if err != nil {
			buf.Release()
			return nil, errors.Wrap(err, "receive failed")
		}
		// A zero-byte read with no error; try again.
	}
}

func (t *tcpConn) Write(p []byte) (int, error) {
	n, err := t.c.Write(p)
	if err != nil {
		return n, errors.Wrap(err, "write failed")
	}
	return n, nil
}

func (t *tcpConn) Close() error {
	return t.c.Close()
}
