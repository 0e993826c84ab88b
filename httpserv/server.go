// Package httpserv is a minimal HTTP/1.x request server over a segment-chain
// transport. Connections are handled one at a time to completion: headers are
// reassembled across arbitrarily fragmented deliveries, GET and POST are
// classified from the request line, POST bodies are streamed to a sink as
// they arrive, and the resolved response blob is written back verbatim.
//
// Keep-alive, chunked transfer-encoding, pipelining and TLS are out of scope;
// each connection carries exactly one request.
package httpserv

import (
	"io"
	"log"
	"time"

	"github.com/zbqxyz/ESP-AT-Lib/netconn"
	"github.com/zbqxyz/ESP-AT-Lib/staticfs"
)

// How one connection concluded. Used by the caller for logging and control
// decisions only; the accept loop continues regardless.
type ServeResult int

const (
	// A response was attempted (or deliberately skipped because nothing
	// resolved, not even a not-found page).
	ServeOK ServeResult = iota

	// The request was abandoned by the parser; no response was written.
	ServeRejected

	// Receiving or writing failed; no response reached the peer.
	ServeTransportError
)

func (r ServeResult) String() string {
	switch r {
	case ServeOK:
		return "ok"
	case ServeRejected:
		return "rejected"
	case ServeTransportError:
		return "transport error"
	}
	return "unknown"
}

// Server serves one request per accepted connection from an in-memory store.
type Server struct {
	// Store resolves request-targets to response blobs.
	Store *staticfs.Store

	// IndexPages are tried in order for requests targeting the site root.
	// Nil means DefaultIndexPages.
	IndexPages []string

	// BodySink receives streamed POST body bytes as they arrive. Nil
	// discards them. Sink write failures do not interrupt the stream.
	BodySink io.Writer

	// Recorder, when set, is fed one entry per served request.
	Recorder *Recorder

	// ErrorLog logs per-connection failures. Nil means silent.
	ErrorLog *log.Logger
}

// Serve accepts connections from l and handles each to completion before
// accepting the next. Returns when Accept fails, typically because the
// listener was closed.
func (s *Server) Serve(l netconn.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		if res := s.ServeConn(conn); res != ServeOK {
			s.logf("connection %s from %s: %s", conn.ID(), conn.RemoteAddr(), res)
		}
	}
}

// ServeConn handles one accepted connection to completion and tears it down.
// All per-request state lives on the stack of this call; the retained
// deliveries are released on every exit path, and the connection is closed
// unless the peer closed it first.
func (s *Server) ServeConn(conn netconn.Conn) ServeResult {
	started := time.Now()
	ra := &reassembler{conn: conn}
	defer func() {
		ra.release()
		if !ra.peerClosed {
			conn.Close()
		}
	}()

	bodyStart, err := ra.awaitHeaders()
	if err != nil {
		s.logf("connection %s: %v", conn.ID(), err)
		if err == ErrIncompleteRequest {
			return ServeRejected
		}
		return ServeTransportError
	}

	method := ra.classifyMethod()
	var bodyBytes uint64
	switch method {
	case MethodGet:
		// No body is expected; nothing further is read from the transport.
	case MethodPost:
		if want, ok := ra.contentLength().Get(); ok {
			bodyBytes = ra.streamBody(bodyStart, want, s.BodySink)
		}
		// Without a declared Content-Length the body, if any, is ignored
		// and no further reads are attempted.
	default:
		s.logf("connection %s: %v", conn.ID(), ErrUnsupportedMethod)
		return ServeRejected
	}

	target, err := ra.parseTarget()
	if err != nil {
		s.logf("connection %s: %v", conn.ID(), err)
		return ServeRejected
	}

	entry := Entry{
		ConnID:    conn.ID(),
		Started:   started,
		Method:    method.String(),
		Target:    target,
		BodyBytes: int64(bodyBytes),
	}

	indexPages := s.IndexPages
	if indexPages == nil {
		indexPages = DefaultIndexPages
	}
	if file, ok := Resolve(s.Store, indexPages, target).Get(); ok {
		n, werr := conn.Write(file.Data)
		s.Store.Close(file)
		if werr != nil {
			s.logf("connection %s: %v", conn.ID(), werr)
			return ServeTransportError
		}
		entry.ResolvedPath = file.Path
		entry.NotFound = s.Store.NotFoundPath().GetOrDefault("") == file.Path
		entry.ResponseBytes = int64(n)
	}
	// When nothing resolved, not even a not-found page, nothing is written.

	entry.Duration = time.Since(started)
	s.Recorder.record(entry)
	return ServeOK
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
	}
}
