// Package blob manages the local files VidAdmin creates from downloaded
// content: short-lived handles to temp files that are addressed by file://
// URLs, and saved downloads.
package blob

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Handle is a temp file holding downloaded content. It stays on disk until
// Release is called.
type Handle struct {
	path string
	url  string
	reg  *Registry

	once sync.Once
	err  error
}

// Path returns the location of the file on disk.
func (h *Handle) Path() string {
	return h.path
}

// URL returns the file:// URL of the file.
func (h *Handle) URL() string {
	return h.url
}

// Release deletes the file. Only the first call has any effect; later calls
// return the result of the first.
func (h *Handle) Release() error {
	h.once.Do(func() {
		err := os.Remove(h.path)
		if err != nil && !os.IsNotExist(err) {
			h.err = fmt.Errorf("release %s: %w", h.path, err)
		}
		if h.reg != nil {
			h.reg.forget(h)
		}
	})
	return h.err
}

// Registry creates Handles and keeps track of the ones not yet released.
type Registry struct {
	dir string

	mtx  sync.Mutex
	live map[*Handle]struct{}
}

// NewRegistry creates a Registry whose files are created in dir. If dir is
// empty the system temp dir is used.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:  dir,
		live: make(map[*Handle]struct{}),
	}
}

// Create writes data to a new temp file and returns a Handle to it. The file
// extension is picked from contentType when one is known.
func (r *Registry) Create(data []byte, contentType string) (*Handle, error) {
	f, err := os.CreateTemp(r.dir, "vadm-*"+extensionOf(contentType))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	abs, err := filepath.Abs(f.Name())
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("resolve temp file: %w", err)
	}

	h := &Handle{
		path: abs,
		url:  (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		reg:  r,
	}

	r.mtx.Lock()
	r.live[h] = struct{}{}
	r.mtx.Unlock()

	return h, nil
}

// Live returns how many Handles have been created and not released.
func (r *Registry) Live() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.live)
}

// ReleaseAll releases every live Handle. The first error encountered is
// returned, but every Handle is attempted.
func (r *Registry) ReleaseAll() error {
	r.mtx.Lock()
	handles := make([]*Handle, 0, len(r.live))
	for h := range r.live {
		handles = append(handles, h)
	}
	r.mtx.Unlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Registry) forget(h *Handle) {
	r.mtx.Lock()
	delete(r.live, h)
	r.mtx.Unlock()
}

func extensionOf(contentType string) string {
	switch contentType {
	case "application/json":
		return ".json"
	case "":
		return ""
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
