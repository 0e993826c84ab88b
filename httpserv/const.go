package httpserv

const (
	// Maximum request-target length the parser accepts. Longer targets are a
	// hard parse failure.
	maxTargetLength = 256
)

var (
	headerTerminator = []byte("\r\n\r\n")
	crlf             = []byte("\r\n")
	space            = []byte(" ")

	literalGet  = []byte("GET")
	literalPost = []byte("POST")

	// Only these two spellings are recognized; there is no general
	// case-insensitive header scan.
	contentLengthCanonical = []byte("Content-Length:")
	contentLengthLower     = []byte("content-length:")
)

// DefaultIndexPages are tried, in order, for requests targeting the site
// root.
var DefaultIndexPages = []string{"/index.html", "/index.htm"}
