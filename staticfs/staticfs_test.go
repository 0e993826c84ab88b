package staticfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenAndClose(t *testing.T) {
	store := NewStore()
	store.AddFile("/index.html", []byte("<html>home</html>"))

	f, ok := store.Open("/index.html", false).Get()
	assert.True(t, ok)
	assert.Equal(t, "/index.html", f.Path)
	assert.Equal(t, []byte("<html>home</html>"), f.Data)
	assert.Equal(t, 1, store.OpenCount())

	store.Close(f)
	assert.Equal(t, 0, store.OpenCount())
}

func TestOpenMiss(t *testing.T) {
	store := NewStore()
	assert.True(t, store.Open("/nope", false).IsNone())
}

func TestNotFoundPage(t *testing.T) {
	store := NewStore()

	// No not-found page configured.
	assert.True(t, store.Open("", true).IsNone())

	store.SetNotFound("/404.html", []byte("gone"))
	f, ok := store.Open("/ignored", true).Get()
	assert.True(t, ok)
	assert.Equal(t, "/404.html", f.Path)
	store.Close(f)

	nf, ok := store.NotFoundPath().Get()
	assert.True(t, ok)
	assert.Equal(t, "/404.html", nf)

	// The page is also reachable by its own path.
	f, ok = store.Open("/404.html", false).Get()
	assert.True(t, ok)
	store.Close(f)
}

func TestCloseNil(t *testing.T) {
	store := NewStore()
	store.Close(nil)
	assert.Equal(t, 0, store.OpenCount())
}

func TestPaths(t *testing.T) {
	store := NewStore()
	store.AddFile("/b", nil)
	store.AddFile("/a", nil)
	store.SetNotFound("/404.html", nil)
	assert.Equal(t, []string{"/404.html", "/a", "/b"}, store.Paths())
}
