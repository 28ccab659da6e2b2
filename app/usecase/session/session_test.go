package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasya-io/kilonote/app/boundary/memsurface"
	"github.com/wasya-io/kilonote/app/boundary/reporter"
	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
	"github.com/wasya-io/kilonote/app/usecase/errorboundary"
)

func newSession(t *testing.T, s surface.Surface, opts ...Option) (*Session, *scheduler.Manual) {
	t.Helper()
	clock := scheduler.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	opts = append([]Option{WithEnvironment(config.Environment{})}, opts...)
	sess := New(s, clock, opts...)
	t.Cleanup(sess.Close)
	return sess, clock
}

func TestLoadMarkdownAndExport(t *testing.T) {
	s := memsurface.New()
	sess, _ := newSession(t, s)

	require.NoError(t, sess.Load("# Title\n\nSome **bold** and *italic* text."))

	doc, err := s.Document()
	require.NoError(t, err)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, document.TypeHeading, doc.Content[0].Type)
	assert.Equal(t, "Title", doc.Content[0].TextContent())

	md, err := sess.Export(content.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**bold**")

	html, err := sess.Export(content.FormatHTML)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<h1>Title</h1>"), html)

	raw, err := sess.Export(content.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, raw, `"type":"doc"`)

	_, err = sess.Export(content.FormatUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := memsurface.New()
	sess, clock := newSession(t, s)
	s.InsertText("hello", false)

	stored, err := sess.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, content.FormatJSON, stored.Format)
	assert.Equal(t, clock.Now().UnixMilli(), stored.SavedAt)

	data, err := stored.Marshal()
	require.NoError(t, err)

	other := memsurface.New()
	restored, _ := newSession(t, other)
	require.NoError(t, restored.Load(string(data)))

	want, err := s.Document()
	require.NoError(t, err)
	got, err := other.Document()
	require.NoError(t, err)
	assert.True(t, document.Equal(want, got))
}

func TestLoadErrors(t *testing.T) {
	sess, _ := newSession(t, memsurface.New(memsurface.WithoutCommands()))
	assert.ErrorIs(t, sess.Load("text"), surface.ErrNoCommands)

	destroyed := memsurface.New()
	destroyed.Destroy()
	sess, _ = newSession(t, destroyed)
	assert.ErrorIs(t, sess.Load("text"), surface.ErrDestroyed)

	_, err := sess.Snapshot()
	assert.ErrorIs(t, err, surface.ErrDestroyed)
}

func TestLoadGarbageFallsBackToEmpty(t *testing.T) {
	s := memsurface.New()
	sess, _ := newSession(t, s)
	s.InsertText("previous", false)

	require.NoError(t, sess.Load(map[string]any{"formatTag": "json", "payload": 42}))
	doc, err := s.Document()
	require.NoError(t, err)
	assert.True(t, sess.Store().IsEmpty(doc))
}

func TestOnSaveReceivesAutosave(t *testing.T) {
	s := memsurface.New()
	sess, clock := newSession(t, s)

	var saved []content.StoredContent
	off := sess.OnSave(func(stored content.StoredContent, _ time.Time) {
		saved = append(saved, stored)
	})

	s.InsertText("one", false)
	s.InsertText(" two", false)
	clock.Advance(config.DefaultUX().AutoSaveDelay)
	require.Len(t, saved, 1)
	assert.Equal(t, content.FormatJSON, saved[0].Format)

	off()
	s.InsertText(" three", false)
	clock.Advance(config.DefaultUX().AutoSaveDelay)
	assert.Len(t, saved, 1)
}

func TestHealthIndicator(t *testing.T) {
	s := memsurface.New()
	sess, clock := newSession(t, s)

	var records []health.Record
	sess.OnHealthChange(func(r health.Record) { records = append(records, r) })

	require.NoError(t, sess.Start())
	assert.Equal(t, health.Healthy, sess.HealthIndicator())

	s.Detach()
	clock.Advance(config.Default().HealthInterval)
	assert.Equal(t, health.Warning, sess.HealthIndicator())
	require.NotEmpty(t, records)
	assert.True(t, records[len(records)-1].Has(health.IssueViewDetached))
}

func TestStartCollectsPerformanceSamples(t *testing.T) {
	s := memsurface.New()
	sess, clock := newSession(t, s)
	require.NoError(t, sess.Start())

	clock.Advance(2 * config.Default().PerfInterval)
	assert.Len(t, sess.Perf().History(), 2)
}

func TestRenderIsGuarded(t *testing.T) {
	s := memsurface.New()
	mem := &reporter.Memory{}
	var fallbacks int
	sess, _ := newSession(t, s,
		WithReporter(mem),
		WithFallback(func(context.Context, *errorboundary.Fault, *errorboundary.Boundary) error {
			fallbacks++
			return nil
		}),
	)

	require.NoError(t, sess.Render(context.Background()))
	assert.Equal(t, 1, s.RefreshCount())

	s.SetRefreshHook(func() { panic("layout failed") })
	require.NoError(t, sess.Render(context.Background()))
	assert.Equal(t, errorboundary.StateFaulted, sess.Boundary().State())
	assert.Equal(t, 1, fallbacks)

	reports := mem.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "healthy", reports[0].Context["health"])

	s.SetRefreshHook(nil)
	require.NoError(t, sess.Boundary().Retry(context.Background()))
	assert.Equal(t, errorboundary.StateNormal, sess.Boundary().State())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := memsurface.New()
	sess, clock := newSession(t, s)
	require.NoError(t, sess.Start())

	sess.Close()
	sess.Close()
	assert.Equal(t, 0, clock.Pending())
	assert.ErrorIs(t, sess.Start(), ErrClosed)
	assert.ErrorIs(t, sess.Load("x"), ErrClosed)
	_, err := sess.Export(content.FormatHTML)
	assert.ErrorIs(t, err, ErrClosed)
}

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Log(messageType, message string) {
	l.entries = append(l.entries, messageType+": "+message)
}

func (l *recordingLogger) Flush() {}

func TestUnsubscribedSaveIsLogged(t *testing.T) {
	s := memsurface.New()
	log := &recordingLogger{}
	_, clock := newSession(t, s, WithLogger(log))

	s.InsertText("draft", false)
	clock.Advance(config.DefaultUX().AutoSaveDelay)

	assert.Contains(t, log.entries, "debug: session: no subscriber for save-requested event")
}
