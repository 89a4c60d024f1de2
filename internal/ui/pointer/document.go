package pointer

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Phase orders listeners on the document. Every capture listener sees an
// event before any bubble listener does.
type Phase int

const (
	Capture Phase = iota
	Bubble
)

// Listener handles one mouse event and may return a command.
type Listener func(msg tea.MouseMsg) tea.Cmd

type subscription struct {
	id       uint64
	listener Listener
}

// Document is the terminal-wide mouse event target. Components register
// listeners while they are mounted and remove them on teardown.
type Document struct {
	mu        sync.RWMutex
	listeners map[Phase][]subscription
	nextID    uint64
}

// NewDocument creates a document with no listeners
func NewDocument() *Document {
	return &Document{
		listeners: make(map[Phase][]subscription),
	}
}

// Subscribe registers a listener for phase. The returned function removes it
// and is safe to call more than once.
func (d *Document) Subscribe(phase Phase, listener Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.listeners[phase] = append(d.listeners[phase], subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { d.unsubscribe(phase, id) })
	}
}

func (d *Document) unsubscribe(phase Phase, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.listeners[phase]
	for i, s := range subs {
		if s.id == id {
			d.listeners[phase] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(d.listeners[phase]) == 0 {
		delete(d.listeners, phase)
	}
}

// Dispatch delivers msg to capture listeners, then to bubble listeners, in
// registration order. Listeners run synchronously on the caller's goroutine.
func (d *Document) Dispatch(msg tea.MouseMsg) tea.Cmd {
	var cmds []tea.Cmd
	for _, phase := range []Phase{Capture, Bubble} {
		// snapshot so listeners may unsubscribe while being called
		d.mu.RLock()
		subs := append([]subscription(nil), d.listeners[phase]...)
		d.mu.RUnlock()

		for _, s := range subs {
			if cmd := s.listener(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// Len returns the number of registered listeners across both phases.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, subs := range d.listeners {
		n += len(subs)
	}
	return n
}

// IsPress reports whether msg is a left button press.
func IsPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}

// IsMotion reports whether msg is pointer movement.
func IsMotion(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionMotion
}
