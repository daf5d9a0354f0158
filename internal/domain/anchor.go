package domain

import "strings"

// Anchor is a fragment identifier without its leading '#'.
type Anchor string

func (a Anchor) String() string { return string(a) }

// MaxAnchorLength bounds what the server accepts for a single anchor.
const MaxAnchorLength = 256

// NormalizeAnchor trims surrounding whitespace and strips one leading '#'.
func NormalizeAnchor(s string) Anchor {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	return Anchor(s)
}

// FragmentID returns the element id part of a fragment, i.e. everything
// before the first '&'. Servers sometimes echo a hash with extra encoded
// data appended after it.
func FragmentID(fragment string) string {
	id, _, _ := strings.Cut(fragment, "&")
	return id
}

// RecallMode controls whether reading a remembered anchor consumes it.
type RecallMode string

const (
	// RecallPeek leaves the anchor in place; repeated reads return it again.
	RecallPeek RecallMode = "peek"
	// RecallConsume deletes the anchor on read.
	RecallConsume RecallMode = "consume"
)

func (m RecallMode) Valid() bool {
	return m == RecallPeek || m == RecallConsume
}
