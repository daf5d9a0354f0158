package domain

// Location is the mutable address of the currently loaded page.
type Location interface {
	// Href returns the full URL including the fragment.
	Href() string
	// Fragment returns the fragment without its leading '#', or "".
	Fragment() string
	// SetFragment replaces the fragment. Assigning a fragment whose element
	// exists scrolls it into view.
	SetFragment(fragment string)
	// AppendToURL appends suffix verbatim to the end of the URL.
	AppendToURL(suffix string)
}

// Document answers element lookups against the loaded page.
type Document interface {
	HasElement(id string) bool
}

// SessionStorage is the browser-tab-scoped key/value store. Values are
// ordered string lists.
type SessionStorage interface {
	StoredList(key string) []string
	SetStoredList(key string, list []string)
}

// PageContext is everything client-side anchor and history code may touch.
type PageContext interface {
	Location
	Document
	SessionStorage
}

// Trigger is an element that emits a click-equivalent activation.
type Trigger interface {
	OnActivate(fn func())
}
