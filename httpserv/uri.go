package httpserv

import (
	"strings"

	"github.com/zbqxyz/ESP-AT-Lib/optionals"
	"github.com/zbqxyz/ESP-AT-Lib/staticfs"
)

// Resolve maps a request-target to an open file handle from store.
//
// A target of `/`, or `/` followed by a query string, tries the index pages
// in order. Otherwise (or when no index page exists) the target is truncated
// at the first `?` and looked up directly; the query string is split off and
// discarded. If nothing matches, the store's designated not-found page is the
// final fallback.
//
// No path normalization or percent-decoding is performed. Callers serving an
// untrusted network must layer a path-traversal defense above this.
func Resolve(store *staticfs.Store, indexPages []string, target string) optionals.Optional[*staticfs.File] {
	if target == "/" || strings.HasPrefix(target, "/?") {
		for _, page := range indexPages {
			if f := store.Open(page, false); f.IsSome() {
				return f
			}
		}
	}

	path, _, _ := strings.Cut(target, "?")
	if f := store.Open(path, false); f.IsSome() {
		return f
	}

	return store.Open("", true)
}
