package httpserv

import "github.com/pkg/errors"

// Parse failures are local to one connection; none are fatal to the server.
// No response is written for any of them.
var (
	// The peer ended the stream before the header terminator arrived.
	ErrIncompleteRequest = errors.New("stream ended before headers completed")

	// The request line's space delimiters are not where a GET or POST verb
	// would put them.
	ErrMalformedRequestLine = errors.New("malformed request line")

	// The request-target exceeds the maximum length.
	ErrTargetTooLong = errors.New("request target too long")

	// The method is something other than GET or POST.
	ErrUnsupportedMethod = errors.New("unsupported method")
)
