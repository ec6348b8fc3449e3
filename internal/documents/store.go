// Package documents implements the customer-facing document pipeline:
// quote and invoice records are mapped to a template context, rendered
// through a logic-less HTML template and printed to PDF by a shared
// headless browser session.
package documents

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store loads named HTML document templates and caches them for the
// lifetime of the process. A template file changed on disk is not picked
// up until restart; deployments that edit templates must roll the process.
type Store struct {
	fsys  fs.FS
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]string
}

// NewStore creates a Store reading templates from fsys. Template names map
// to "<name>.html" files at the root of fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:  fsys,
		cache: make(map[string]string),
	}
}

// Load returns the raw template content for name. The first load per name
// reads from storage; subsequent loads are served from memory. Concurrent
// first loads for the same name share one read. A cancelled ctx abandons
// the load before touching storage.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	tpl, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return tpl, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		data, err := fs.ReadFile(s.fsys, name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		content := string(data)
		s.mu.Lock()
		s.cache[name] = content
		s.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
