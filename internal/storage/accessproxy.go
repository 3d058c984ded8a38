package storage

import "sync"

// AccessProxy is the single non-owning borrow external readers get onto
// whichever PersistentStorage the project controller currently owns
// (spec.md §9's "shared ownership" design note). The project controller
// is the sole owner; TaskFinishParsing calls SetSubject once a refresh
// finishes so readers see the freshly injected storage without racing
// the write phase that preceded it.
type AccessProxy struct {
	mu      sync.RWMutex
	subject PersistentStorage
}

// NewAccessProxy returns a proxy with no subject yet.
func NewAccessProxy() *AccessProxy {
	return &AccessProxy{}
}

// SetSubject updates the handle readers see.
func (p *AccessProxy) SetSubject(s PersistentStorage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subject = s
}

// Storage returns the current subject, or nil if none has been set yet.
func (p *AccessProxy) Storage() PersistentStorage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subject
}
