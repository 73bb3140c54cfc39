package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MKhiriev/go-secure-folder/models"
)

// pathLocks is the set of paths held by running operations. A path
// conflicts with itself, its ancestors and its descendants.
type pathLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newPathLocks() *pathLocks {
	return &pathLocks{held: make(map[string]struct{})}
}

// tryLock takes all paths or none. Paths must be clean and absolute.
func (l *pathLocks) tryLock(paths ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range paths {
		for h := range l.held {
			if overlaps(p, h) {
				return fmt.Errorf("%w: %s", models.ErrBusy, p)
			}
		}
	}
	for _, p := range paths {
		l.held[p] = struct{}{}
	}
	return nil
}

func (l *pathLocks) unlock(paths ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range paths {
		delete(l.held, p)
	}
}

func overlaps(a, b string) bool {
	return a == b || within(a, b) || within(b, a)
}

// within reports whether p lies strictly inside dir.
func within(p, dir string) bool {
	if dir == string(filepath.Separator) {
		return p != dir && strings.HasPrefix(p, dir)
	}
	return strings.HasPrefix(p, dir+string(filepath.Separator))
}
