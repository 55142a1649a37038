// Package document holds the page-level side channels of the application: the
// current title and the global key listeners.
package document

import "sync"

// DefaultTitle is the title shown when no movie is open.
const DefaultTitle = "usePopcorn"

// KeyListener receives the code of every dispatched key press.
type KeyListener func(code string)

// Document is the environment handle passed to components that need the
// title or global key presses.
type Document struct {
	mu        sync.Mutex
	title     string
	listeners map[uint64]KeyListener
	order     []uint64
	nextID    uint64
}

// New returns a document with the default title and no listeners.
func New() *Document {
	return &Document{
		title:     DefaultTitle,
		listeners: make(map[uint64]KeyListener),
	}
}

// Title returns the current title.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// SetTitle replaces the current title.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// AddKeyListener registers fn and returns the function that removes it.
func (d *Document) AddKeyListener(fn KeyListener) (remove func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.order = append(d.order, id)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.listeners, id)
			for i, v := range d.order {
				if v == id {
					d.order = append(d.order[:i], d.order[i+1:]...)
					break
				}
			}
		})
	}
}

// DispatchKey delivers code to every listener registered at the time of the
// call, in registration order. Listeners run without the document lock held.
func (d *Document) DispatchKey(code string) {
	d.mu.Lock()
	snapshot := make([]KeyListener, 0, len(d.order))
	for _, id := range d.order {
		snapshot = append(snapshot, d.listeners[id])
	}
	d.mu.Unlock()

	for _, fn := range snapshot {
		fn(code)
	}
}

// ListenerCount returns the number of registered key listeners.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
