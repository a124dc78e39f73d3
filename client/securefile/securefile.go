// Package securefile loads gated module files and hands them out as revocable in-process handles.
package securefile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNotAuthorized means the server refused the file (403). Retrying will not help.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrLoadFailed covers transport errors and every other non-2xx answer.
	ErrLoadFailed = errors.New("failed to load")
)

// Payload is a fetched file plus the access headers the server attached to it.
type Payload struct {
	Data            []byte
	ContentType     string
	Access          string // "full" or "preview"
	PreviewDuration int
}

// Fetcher performs the authenticated GET of a module file. A transport failure is returned as
// err; otherwise status is the HTTP status and p is set for 2xx answers.
type Fetcher interface {
	FetchSecureFile(ctx context.Context, moduleID uint) (status int, p *Payload, err error)
}

// Registry holds loaded payloads under opaque blob:<uuid> handles until they are released.
type Registry struct {
	mu          sync.Mutex
	blobs       map[string]*Payload
	revocations int
}

func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]*Payload)}
}

// Register stores p and returns its handle with a release function. Calling release more than
// once revokes the handle only the first time.
func (r *Registry) Register(p *Payload) (string, func()) {
	handle := "blob:" + uuid.NewString()
	r.mu.Lock()
	r.blobs[handle] = p
	r.mu.Unlock()

	var once sync.Once
	return handle, func() {
		once.Do(func() { r.revoke(handle) })
	}
}

func (r *Registry) revoke(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[handle]; ok {
		delete(r.blobs, handle)
		r.revocations++
	}
}

// Resolve returns the payload behind a live handle.
func (r *Registry) Resolve(handle string) (*Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.blobs[handle]
	return p, ok
}

// Len is the number of live handles
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}

// Revocations counts handles released so far
func (r *Registry) Revocations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revocations
}

// Load fetches a module file and registers it. On error nothing is registered and release is nil.
func Load(ctx context.Context, f Fetcher, reg *Registry, moduleID uint) (handle string, release func(), err error) {
	status, p, err := f.FetchSecureFile(ctx, moduleID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: module %d: %v", ErrLoadFailed, moduleID, err)
	}
	switch {
	case status == http.StatusForbidden:
		return "", nil, fmt.Errorf("%w: module %d", ErrNotAuthorized, moduleID)
	case status < 200 || status > 299 || p == nil:
		return "", nil, fmt.Errorf("%w: module %d: status %d", ErrLoadFailed, moduleID, status)
	}
	handle, release = reg.Register(p)
	return handle, release, nil
}
