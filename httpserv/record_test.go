package httpserv

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCollectsServedRequests(t *testing.T) {
	rec := NewRecorder()
	srv := &Server{Store: testStore(), Recorder: rec}

	srv.ServeConn(newScriptConn(t, []byte("GET /page.html HTTP/1.1\r\n\r\n")))
	srv.ServeConn(newScriptConn(t, []byte("GET /missing.txt HTTP/1.1\r\n\r\n")))
	// Rejected requests are not recorded.
	srv.ServeConn(newScriptConn(t, []byte("PUT /x HTTP/1.1\r\n\r\n")))

	entries := rec.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "/page.html", entries[0].Target)
	assert.Equal(t, "/missing.txt", entries[1].Target)
	assert.True(t, entries[1].NotFound)
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.record(Entry{})
	assert.Nil(t, rec.Entries())

	// A server without a recorder serves normally.
	srv := &Server{Store: testStore()}
	conn := newScriptConn(t, []byte("GET /page.html HTTP/1.1\r\n\r\n"))
	assert.Equal(t, ServeOK, srv.ServeConn(conn))
}

func TestHARExport(t *testing.T) {
	rec := NewRecorder()
	started := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	rec.record(Entry{
		ConnID:        id,
		Started:       started,
		Duration:      250 * time.Millisecond,
		Method:        "POST",
		Target:        "/upload?src=cam",
		ResolvedPath:  "/upload",
		BodyBytes:     5,
		ResponseBytes: 24,
	})
	rec.record(Entry{
		ConnID:       uuid.New(),
		Started:      started.Add(time.Second),
		Method:       "GET",
		Target:       "/missing.txt",
		ResolvedPath: "/404.html",
		NotFound:     true,
	})
	rec.record(Entry{
		ConnID:  uuid.New(),
		Started: started.Add(2 * time.Second),
		Method:  "GET",
		Target:  "/nothing",
	})

	h := rec.HAR()
	assert.Equal(t, "1.2", h.Log.Version)
	assert.Len(t, h.Log.Entries, 3)

	first := h.Log.Entries[0]
	assert.Equal(t, id.String(), first.ID)
	assert.Equal(t, int64(250), first.Time)
	assert.Equal(t, "POST", first.Request.Method)
	assert.Equal(t, "/upload?src=cam", first.Request.URL)
	assert.Equal(t, int64(5), first.Request.BodySize)
	assert.Equal(t, 200, first.Response.Status)
	assert.Equal(t, int64(24), first.Response.BodySize)

	assert.Equal(t, 404, h.Log.Entries[1].Response.Status)

	// No response was written for the last request.
	assert.Nil(t, h.Log.Entries[2].Response)

	// The archive must serialize cleanly.
	raw, err := json.Marshal(h)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff("1.2", decoded["log"].(map[string]interface{})["version"]); diff != "" {
		t.Error(diff)
	}
}
