package httpserv

import (
	"sync"
	"time"

	"github.com/google/martian/v3/har"
	"github.com/google/uuid"
)

// Entry describes one served request.
type Entry struct {
	ConnID  uuid.UUID
	Started time.Time

	// Wall time from first delivery to response written.
	Duration time.Duration

	Method string

	// The raw request-target, query string included.
	Target string

	// The path of the blob written back, empty when nothing resolved.
	ResolvedPath string

	// Whether the designated not-found page was served.
	NotFound bool

	// POST body bytes forwarded to the sink.
	BodyBytes int64

	ResponseBytes int64
}

// Recorder collects one Entry per served request, for debugging and test
// assertions. The zero value of *Recorder (nil) records nothing.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(e Entry) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of everything recorded so far, in serve order.
func (r *Recorder) Entries() []Entry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// HAR renders the recorded traffic as an HTTP Archive. Requests that
// produced no response get an entry without a response object.
func (r *Recorder) HAR() *har.HAR {
	entries := r.Entries()
	harEntries := make([]*har.Entry, 0, len(entries))
	for _, e := range entries {
		he := &har.Entry{
			ID:              e.ConnID.String(),
			StartedDateTime: e.Started,
			Time:            e.Duration.Milliseconds(),
			Request: &har.Request{
				Method:      e.Method,
				URL:         e.Target,
				HTTPVersion: "HTTP/1.1",
				Cookies:     []har.Cookie{},
				Headers:     []har.Header{},
				QueryString: []har.QueryString{},
				HeadersSize: -1,
				BodySize:    e.BodyBytes,
			},
		}
		if e.ResolvedPath != "" {
			status, text := 200, "OK"
			if e.NotFound {
				status, text = 404, "Not Found"
			}
			he.Response = &har.Response{
				Status:      status,
				StatusText:  text,
				HTTPVersion: "HTTP/1.1",
				Cookies:     []har.Cookie{},
				Headers:     []har.Header{},
				HeadersSize: -1,
				BodySize:    e.ResponseBytes,
			}
		}
		harEntries = append(harEntries, he)
	}

	return &har.HAR{
		Log: &har.Log{
			Version: "1.2",
			Creator: &har.Creator{
				Name:    "httpserv",
				Version: "1.0",
			},
			Entries: harEntries,
		},
	}
}
