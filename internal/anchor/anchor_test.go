package anchor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage is a minimal domain.PageContext that records fragment writes.
type fakePage struct {
	mu          sync.Mutex
	href        string
	fragment    string
	ids         map[string]bool
	setCalls    []string
	appendCalls []string
	lists       map[string][]string
}

func newFakePage(fragment string, ids ...string) *fakePage {
	p := &fakePage{href: "https://x/y", fragment: fragment, ids: map[string]bool{}, lists: map[string][]string{}}
	for _, id := range ids {
		p.ids[id] = true
	}
	return p
}

func (p *fakePage) Href() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fragment == "" {
		return p.href
	}
	return p.href + "#" + p.fragment
}

func (p *fakePage) Fragment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fragment
}

func (p *fakePage) SetFragment(f string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fragment = f
	p.setCalls = append(p.setCalls, f)
}

func (p *fakePage) AppendToURL(suffix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fragment += suffix
	p.appendCalls = append(p.appendCalls, suffix)
}

func (p *fakePage) HasElement(id string) bool { return p.ids[id] }
func (p *fakePage) StoredList(key string) []string { return p.lists[key] }
func (p *fakePage) SetStoredList(key string, l []string) { p.lists[key] = l }

type fakeTrigger struct {
	fns []func()
}

func (f *fakeTrigger) OnActivate(fn func()) { f.fns = append(f.fns, fn) }

func (f *fakeTrigger) fire() {
	for _, fn := range f.fns {
		fn()
	}
}

type recordedRequest struct {
	method      string
	body        string
	token       string
	contentType string
}

// anchorEndpoint records every request and answers GETs with status/body.
type anchorEndpoint struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newAnchorEndpoint(t *testing.T, status int, body string) (*anchorEndpoint, *httptest.Server) {
	t.Helper()
	ep := &anchorEndpoint{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ep.mu.Lock()
		ep.requests = append(ep.requests, recordedRequest{
			method:      r.Method,
			body:        string(b),
			token:       r.Header.Get(HeaderCSRFToken),
			contentType: r.Header.Get("Content-Type"),
		})
		ep.mu.Unlock()

		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(ep.status)
		_, _ = io.WriteString(w, ep.body)
	}))
	t.Cleanup(srv.Close)
	return ep, srv
}

func (e *anchorEndpoint) recorded() []recordedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]recordedRequest(nil), e.requests...)
}

// --- Capture ---

func TestSaver_PostsFragmentOnActivation(t *testing.T) {
	fragments := []string{"section-2", "a", "tab-documents&page=3", "ünïcode"}

	for _, fragment := range fragments {
		t.Run(fragment, func(t *testing.T) {
			ep, srv := newAnchorEndpoint(t, http.StatusOK, "")
			saver := NewSaver(NewClient(srv.URL, "tok-1"))
			trigger := &fakeTrigger{}
			saver.Bind(trigger, newFakePage(fragment))

			trigger.fire()
			saver.Wait()

			reqs := ep.recorded()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].method)
			assert.Equal(t, fragment, reqs[0].body)
			assert.Equal(t, "tok-1", reqs[0].token)
			assert.Equal(t, ContentTypeText, reqs[0].contentType)
		})
	}
}

func TestSaver_PostsFragmentUnchanged(t *testing.T) {
	fragments := []string{" ", "#foo", " a ", "##", "section-2 "}

	for _, fragment := range fragments {
		t.Run(fragment, func(t *testing.T) {
			ep, srv := newAnchorEndpoint(t, http.StatusOK, "")
			saver := NewSaver(NewClient(srv.URL, "tok"))

			assert.True(t, saver.Save(newFakePage(fragment)))
			saver.Wait()

			reqs := ep.recorded()
			require.Len(t, reqs, 1)
			assert.Equal(t, fragment, reqs[0].body)
		})
	}
}

func TestSaver_EmptyFragmentSendsNothing(t *testing.T) {
	ep, srv := newAnchorEndpoint(t, http.StatusOK, "")
	saver := NewSaver(NewClient(srv.URL, "tok"))
	trigger := &fakeTrigger{}
	saver.Bind(trigger, newFakePage(""))

	trigger.fire()
	saver.Wait()

	assert.False(t, saver.Save(newFakePage("")))
	assert.Empty(t, ep.recorded())
}

func TestSaver_EachActivationIsOneRequest(t *testing.T) {
	ep, srv := newAnchorEndpoint(t, http.StatusOK, "")
	saver := NewSaver(NewClient(srv.URL, "tok"))
	trigger := &fakeTrigger{}
	saver.Bind(trigger, newFakePage("summary"))

	trigger.fire()
	trigger.fire()
	trigger.fire()
	saver.Wait()

	assert.Len(t, ep.recorded(), 3)
}

func TestSaver_FailedWriteIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	url := srv.URL
	srv.Close()

	saver := NewSaver(NewClient(url, "tok"))
	assert.True(t, saver.Save(newFakePage("summary")))
	saver.Wait()
}

// --- Restore ---

func TestRestore_SkipsWhenPageHasFragment(t *testing.T) {
	ep, srv := newAnchorEndpoint(t, http.StatusOK, "section-2")
	page := newFakePage("own-anchor", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

	assert.Equal(t, Skip, outcome)
	assert.Empty(t, ep.recorded(), "no request when the page brings its own anchor")
	assert.Equal(t, "own-anchor", page.Fragment())
}

func TestRestore_AppliesMatchingAnchor(t *testing.T) {
	ep, srv := newAnchorEndpoint(t, http.StatusOK, "section-2")
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok-9")).Restore(context.Background(), page)

	assert.Equal(t, Applied, outcome)
	assert.Equal(t, "section-2", page.Fragment())

	reqs := ep.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].method)
	assert.Equal(t, "tok-9", reqs[0].token)
}

func TestRestore_ToleratesLeadingDelimiterInBody(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusOK, "#section-2")
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

	assert.Equal(t, Applied, outcome)
	assert.Equal(t, []string{"section-2"}, page.setCalls)
}

func TestRestore_MissingElementLeavesLocation(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusOK, "gone")
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

	assert.Equal(t, NoOp, outcome)
	assert.Empty(t, page.setCalls)
	assert.Equal(t, "https://x/y", page.Href())
}

func TestRestore_RelocatesTrailingData(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusOK, "section-2&foo=bar")
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

	assert.Equal(t, Applied, outcome)
	assert.Equal(t, []string{"section-2"}, page.setCalls, "clean fragment is assigned first")
	assert.Equal(t, []string{"&foo=bar"}, page.appendCalls)
	assert.True(t, strings.HasSuffix(page.Href(), "#section-2&foo=bar"))
}

func TestRestore_TrailingDataWithUnknownIDIsNoOp(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusOK, "nope&foo=bar")
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

	assert.Equal(t, NoOp, outcome)
	assert.Empty(t, page.setCalls)
	assert.Empty(t, page.appendCalls)
}

func TestRestore_FailuresAreNoOps(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "section-2"},
		{"forbidden", http.StatusForbidden, "section-2"},
		{"no content", http.StatusNoContent, ""},
		{"empty body", http.StatusOK, ""},
		{"whitespace body", http.StatusOK, "  \n"},
		{"bare delimiter", http.StatusOK, "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newAnchorEndpoint(t, tt.status, tt.body)
			page := newFakePage("", "section-2")

			outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(context.Background(), page)

			assert.Equal(t, NoOp, outcome)
			assert.Empty(t, page.setCalls)
			assert.Empty(t, page.Fragment())
		})
	}
}

func TestRestore_NetworkFailureIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	page := newFakePage("", "section-2")

	outcome := NewRestorer(NewClient(url, "tok")).Restore(context.Background(), page)

	assert.Equal(t, NoOp, outcome)
	assert.Empty(t, page.setCalls)
}

func TestRestore_CancelledContextIsNoOp(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusOK, "section-2")
	page := newFakePage("", "section-2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := NewRestorer(NewClient(srv.URL, "tok")).Restore(ctx, page)

	assert.Equal(t, NoOp, outcome)
	assert.Empty(t, page.setCalls)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "applied", Applied.String())
	assert.Equal(t, "noop", NoOp.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestClient_GetReportsStatus(t *testing.T) {
	_, srv := newAnchorEndpoint(t, http.StatusTeapot, "")

	_, err := NewClient(srv.URL, "tok").Get(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTeapot, statusErr.Code)
}
