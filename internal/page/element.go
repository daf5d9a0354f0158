package page

import "sync"

// Key names passed to KeyDown.
const (
	KeySpace = " "
	KeyEnter = "Enter"
)

// Element is a node from the loaded document that can receive events.
type Element struct {
	Tag string

	text    string
	mu      sync.Mutex
	attrs   map[string]string
	onClick []func()
	onKey   []func(key string)
}

func newElement(tag string, attrs map[string]string, text string) *Element {
	return &Element{Tag: tag, attrs: attrs, text: text}
}

func (e *Element) ID() string { return e.Attr("id") }

func (e *Element) Attr(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name]
}

// HasAttr reports whether the attribute is present, for boolean attributes
// like checked that carry no value.
func (e *Element) HasAttr(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.attrs[name]
	return ok
}

// Text is the element's text content as parsed, with whitespace collapsed.
func (e *Element) Text() string { return e.text }

func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
}

// OnActivate registers fn as a click listener. It satisfies domain.Trigger.
func (e *Element) OnActivate(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClick = append(e.onClick, fn)
}

func (e *Element) OnKeyDown(fn func(key string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onKey = append(e.onKey, fn)
}

// Click runs the click listeners to completion, in registration order.
func (e *Element) Click() {
	for _, fn := range e.listeners() {
		fn()
	}
}

func (e *Element) KeyDown(key string) {
	e.mu.Lock()
	handlers := append([]func(string){}, e.onKey...)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(key)
	}
}

func (e *Element) listeners() []func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]func(){}, e.onClick...)
}
