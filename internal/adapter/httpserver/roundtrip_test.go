package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/anchorkeep/internal/anchor"
	"github.com/pscheid92/anchorkeep/internal/domain"
	"github.com/pscheid92/anchorkeep/internal/history"
	"github.com/pscheid92/anchorkeep/internal/page"
)

func TestRoundTrip_SaveThenRestore(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	p := b.open("/cases/A-0042#section-2")
	saver := anchor.NewSaver(b.anchorClient(p))
	saver.Bind(p.Element("save-anchor"), p)
	require.Equal(t, 1, p.HardenButtons())

	p.Element("save-anchor").KeyDown(page.KeySpace)
	saver.Wait()

	next := b.open("/cases/A-0042")
	outcome := anchor.NewRestorer(b.anchorClient(next)).Restore(context.Background(), next)

	assert.Equal(t, anchor.Applied, outcome)
	assert.Equal(t, "section-2", next.Fragment())
	assert.Equal(t, "section-2", next.Target().ID())
}

func TestRoundTrip_TrailerMovesToEndOfURL(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	p := b.open("/cases/A-0042#section-2&foo=bar")
	saver := anchor.NewSaver(b.anchorClient(p))
	require.True(t, saver.Save(p))
	saver.Wait()

	next := b.open("/cases/A-0042?tab=1")
	outcome := anchor.NewRestorer(b.anchorClient(next)).Restore(context.Background(), next)

	assert.Equal(t, anchor.Applied, outcome)
	assert.Equal(t, b.baseURL+"/cases/A-0042?tab=1#section-2&foo=bar", next.Href())
	assert.Equal(t, "section-2", next.Target().ID())
}

func TestRoundTrip_ExistingFragmentWins(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	p := b.open("/#summary")
	saver := anchor.NewSaver(b.anchorClient(p))
	saver.Save(p)
	saver.Wait()

	next := b.open("/#tab_notes")
	outcome := anchor.NewRestorer(b.anchorClient(next)).Restore(context.Background(), next)

	assert.Equal(t, anchor.Skip, outcome)
	assert.Equal(t, "tab_notes", next.Fragment())
}

func TestRoundTrip_UnknownElementIsNoOp(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	p := b.open("/")
	require.Equal(t, http.StatusNoContent, b.postAnchor(p, "no-such-section", nil).StatusCode)

	next := b.open("/")
	outcome := anchor.NewRestorer(b.anchorClient(next)).Restore(context.Background(), next)

	assert.Equal(t, anchor.NoOp, outcome)
	assert.Empty(t, next.Fragment())
}

func TestRoundTrip_EmptyFragmentSendsNothing(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	p := b.open("/")
	saver := anchor.NewSaver(b.anchorClient(p))
	assert.False(t, saver.Save(p))
}

func TestRoundTrip_ConsumeModeRestoresOnce(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallConsume)))

	p := b.open("/")
	require.Equal(t, http.StatusNoContent, b.postAnchor(p, "section-1", nil).StatusCode)

	first := b.open("/")
	assert.Equal(t, anchor.Applied, anchor.NewRestorer(b.anchorClient(first)).Restore(context.Background(), first))

	second := b.open("/")
	assert.Equal(t, anchor.NoOp, anchor.NewRestorer(b.anchorClient(second)).Restore(context.Background(), second))
}

func TestRoundTrip_BackLink(t *testing.T) {
	b := newBrowser(t, newTestServer(t, newMemoryService(domain.RecallPeek)))

	history.Visit(b.open("/search"))
	history.Visit(b.open("/cases/A-0042"))
	current := b.open("/cases/A-0043")
	history.Visit(current)

	target, ok := history.Back(current)

	require.True(t, ok)
	assert.Equal(t, b.baseURL+"/cases/A-0042", target)
}
