package anchor

import (
	"context"
	"strings"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

// Outcome is the terminal state of one restore attempt.
type Outcome int

const (
	// Skip: the page already had a fragment, so nothing was requested.
	Skip Outcome = iota
	// Applied: the remembered anchor matched an element and was set.
	Applied
	// NoOp: the request failed, returned nothing usable, or named no element.
	NoOp
)

func (o Outcome) String() string {
	switch o {
	case Skip:
		return "skip"
	case Applied:
		return "applied"
	case NoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// Restorer reapplies a remembered anchor on page load.
type Restorer struct {
	client *Client
}

func NewRestorer(client *Client) *Restorer {
	return &Restorer{client: client}
}

// Restore runs the page-load half of the round-trip. A page that already
// has a fragment keeps it. Cancelling ctx, e.g. because the user navigated
// away, ends in NoOp without touching the page.
func (r *Restorer) Restore(ctx context.Context, page domain.PageContext) Outcome {
	if page.Fragment() != "" {
		return Skip
	}

	body, err := r.client.Get(ctx)
	if err != nil || ctx.Err() != nil {
		return NoOp
	}
	return Apply(page, body)
}

// Apply sets a candidate anchor received from the server on page. The
// fragment is only assigned when an element with the candidate's id exists,
// so the location never points at nothing. Data after an '&' is moved to the
// end of the URL once the clean fragment is in place.
func Apply(page domain.PageContext, candidate string) Outcome {
	anchor := domain.NormalizeAnchor(candidate).String()
	if anchor == "" {
		return NoOp
	}

	id, trailer, hasTrailer := strings.Cut(anchor, "&")
	if id == "" || !page.HasElement(id) {
		return NoOp
	}

	page.SetFragment(id)
	if hasTrailer && trailer != "" {
		page.AppendToURL("&" + trailer)
	}
	return Applied
}
