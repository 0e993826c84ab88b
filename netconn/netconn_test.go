package netconn

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zbqxyz/ESP-AT-Lib/mempool"
)

func testPool(t *testing.T) mempool.BufferPool {
	t.Helper()
	pool, err := mempool.MakeBufferPool(64*1024, 512)
	assert.NoError(t, err)
	return pool
}

func TestReceiveDelivery(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(server, testPool(t))

	go func() {
		client.Write([]byte("GET / HTTP/1.1\r\n"))
	}()

	buf, err := conn.Receive()
	assert.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\n", buf.Bytes().String())
	buf.Release()

	client.Close()
	_, err = conn.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReceiveAfterPeerClose(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(server, testPool(t))

	go func() {
		client.Write([]byte("partial"))
		client.Close()
	}()

	buf, err := conn.Receive()
	assert.NoError(t, err)
	assert.Equal(t, "partial", buf.Bytes().String())
	buf.Release()

	_, err = conn.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWrite(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(server, testPool(t))

	got := make(chan []byte)
	go func() {
		out := make([]byte, 16)
		n, _ := client.Read(out)
		got <- out[:n]
	}()

	n, err := conn.Write([]byte("response"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte("response"), <-got)

	assert.NoError(t, conn.Close())
}

func TestConnIDsDistinct(t *testing.T) {
	_, a := net.Pipe()
	_, b := net.Pipe()
	pool := testPool(t)
	assert.NotEqual(t, NewConn(a, pool).ID(), NewConn(b, pool).ID())
}

func TestListen(t *testing.T) {
	l, err := Listen("127.0.0.1:0", testPool(t))
	assert.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			return
		}
		c.Write([]byte("ping"))
		c.Close()
	}()

	conn, err := l.Accept()
	assert.NoError(t, err)
	buf, err := conn.Receive()
	assert.NoError(t, err)
	assert.Equal(t, "ping", buf.Bytes().String())
	buf.Release()
	conn.Close()
}
