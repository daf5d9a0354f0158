// Package search holds the advanced-search form state: free-text keywords
// and the status/application-type filters.
package search

import (
	"slices"
	"strings"
)

// MaxKeywords caps how many keyword rows a single search may carry.
const MaxKeywords = 20

// Keywords is an ordered set of normalized search keywords.
type Keywords struct {
	items []string
}

// ParseKeywords rebuilds the list from submitted form values, applying the
// same normalization and duplicate rules as Add.
func ParseKeywords(values []string) *Keywords {
	k := &Keywords{}
	for _, v := range values {
		k.Add(v)
	}
	return k
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Add appends a keyword unless it is blank, already present (ignoring case
// and extra whitespace) or the list is full.
func (k *Keywords) Add(s string) bool {
	kw := normalize(s)
	if kw == "" || len(k.items) >= MaxKeywords || slices.Contains(k.items, kw) {
		return false
	}
	k.items = append(k.items, kw)
	return true
}

// Remove drops the keyword at index; out-of-range indexes are ignored.
func (k *Keywords) Remove(index int) bool {
	if index < 0 || index >= len(k.items) {
		return false
	}
	k.items = slices.Delete(k.items, index, index+1)
	return true
}

func (k *Keywords) List() []string {
	return slices.Clone(k.items)
}

func (k *Keywords) Len() int { return len(k.items) }
