package search

import "slices"

// ApplicationTypes and Statuses are the filter checkboxes offered on the form.
var (
	ApplicationTypes = []string{"new", "renewal", "variation", "transfer"}
	Statuses         = []string{
		"draft", "submitted", "in_review", "awaiting_information",
		"approved", "refused", "withdrawn", "appealed", "closed",
	}
)

// Query is one submitted advanced search.
type Query struct {
	Keywords         *Keywords
	ApplicationTypes []string
	Statuses         []string
}

// NewQuery keeps only known filter values, in their canonical order.
func NewQuery(keywords *Keywords, applicationTypes, statuses []string) Query {
	return Query{
		Keywords:         keywords,
		ApplicationTypes: known(ApplicationTypes, applicationTypes),
		Statuses:         known(Statuses, statuses),
	}
}

func known(allowed, submitted []string) []string {
	var out []string
	for _, v := range allowed {
		if slices.Contains(submitted, v) {
			out = append(out, v)
		}
	}
	return out
}

// Checked reports whether a filter value is selected, for rendering.
func (q Query) Checked(group, value string) bool {
	switch group {
	case "application_type":
		return slices.Contains(q.ApplicationTypes, value)
	case "status":
		return slices.Contains(q.Statuses, value)
	default:
		return false
	}
}
