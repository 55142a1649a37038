// Package keyboard binds a single key to a callback on a document.
package keyboard

import (
	"sync"

	"github.com/Clark-Hu/popcorn/internal/document"
)

// Binder keeps at most one listener on its document.
type Binder struct {
	mu     sync.Mutex
	doc    *document.Document
	remove func()
	key    string
}

// NewBinder returns an inactive binder for doc.
func NewBinder(doc *document.Document) *Binder {
	return &Binder{doc: doc}
}

// Bind invokes action whenever key is pressed. Any previous binding is removed
// before the new listener is added.
func (b *Binder) Bind(key string, action func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.unbindLocked()
	b.key = key
	b.remove = b.doc.AddKeyListener(func(code string) {
		if code == key {
			action()
		}
	})
}

// Key returns the bound key, or "" when inactive.
func (b *Binder) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Active reports whether a listener is registered.
func (b *Binder) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove != nil
}

// Close removes the listener. It is safe to call on an inactive binder.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbindLocked()
}

func (b *Binder) unbindLocked() {
	if b.remove != nil {
		b.remove()
		b.remove = nil
	}
	b.key = ""
}
