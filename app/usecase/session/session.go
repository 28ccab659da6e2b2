// session パッケージは1つの編集面に対して、コンテンツ変換・健全性監視・性能監視・
// UXポリシー・エラー境界をまとめて構築するホスト向けの窓口を提供します。
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
	"github.com/wasya-io/kilonote/app/usecase/contentstore"
	"github.com/wasya-io/kilonote/app/usecase/errorboundary"
	"github.com/wasya-io/kilonote/app/usecase/healthmonitor"
	"github.com/wasya-io/kilonote/app/usecase/perfmonitor"
	"github.com/wasya-io/kilonote/app/usecase/uxpolicy"
)

// エラー定義
var (
	ErrClosed            = errors.New("session is closed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// SaveFunc は保存要求を受け取る
type SaveFunc func(stored content.StoredContent, at time.Time)

// Option は Session の構築オプション
type Option func(*Session)

// WithConfig は設定を指定する
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger はロガーを指定する
func WithLogger(logger core.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEnvironment は実行環境を指定する
func WithEnvironment(env config.Environment) Option {
	return func(s *Session) {
		s.env = env
	}
}

// WithReporter はエラーレポートの送信先を指定する
func WithReporter(r errorboundary.Reporter) Option {
	return func(s *Session) {
		s.reporter = r
	}
}

// WithReload はエラー表示からの再読み込み処理を指定する
func WithReload(fn func()) Option {
	return func(s *Session) {
		s.reload = fn
	}
}

// WithFallback はエラー表示を指定する
func WithFallback(fn errorboundary.FallbackFunc) Option {
	return func(s *Session) {
		s.fallback = fn
	}
}

// Session は編集面1つ分のパイプライン
type Session struct {
	mu       sync.Mutex
	surface  surface.Surface
	sched    scheduler.Scheduler
	cfg      *config.Config
	env      config.Environment
	logger   core.Logger
	reporter errorboundary.Reporter
	reload   func()
	fallback errorboundary.FallbackFunc

	bus      *event.Bus
	store    *contentstore.Manager
	health   *healthmonitor.Monitor
	perf     *perfmonitor.Monitor
	ux       *uxpolicy.Engine
	boundary *errorboundary.Boundary

	indicator health.State
	closed    bool
}

// New は編集面 s に対するパイプラインを構築する。監視は Start を呼ぶまで始まらない
func New(s surface.Surface, sched scheduler.Scheduler, opts ...Option) *Session {
	sess := &Session{
		surface: s,
		sched:   sched,
		cfg:     config.Default(),
		env:     config.DetectEnvironment(),
		logger:  nopLogger{},
		bus:     event.NewBus(),
	}
	for _, opt := range opts {
		opt(sess)
	}

	sess.bus.OnUnhandled(func(ev event.Event) {
		sess.logger.Log("debug", fmt.Sprintf("session: no subscriber for %s event", ev.Type))
	})

	sess.store = contentstore.New(
		contentstore.WithLogger(sess.logger),
		contentstore.WithClock(sched.Now),
		contentstore.WithCacheSize(sess.cfg.MarkdownCacheSize),
	)
	sess.health = healthmonitor.New(s, sched, sess.onHealthChange,
		healthmonitor.WithInterval(sess.cfg.HealthInterval),
		healthmonitor.WithLogger(sess.logger),
		healthmonitor.WithBus(sess.bus),
	)
	sess.perf = perfmonitor.New(s, sched,
		perfmonitor.WithHistory(sess.cfg.PerfHistory),
		perfmonitor.WithLogger(sess.logger),
		perfmonitor.WithEnvironment(sess.env),
	)
	sess.ux = uxpolicy.New(s, sched, sess.cfg.UX,
		uxpolicy.WithLogger(sess.logger),
		uxpolicy.WithBus(sess.bus),
		uxpolicy.WithSerializer(sess.store),
	)

	boundaryOpts := []errorboundary.Option{
		errorboundary.WithEnvironment(sess.env),
		errorboundary.WithLogger(sess.logger),
		errorboundary.WithClock(sched.Now),
		errorboundary.WithReload(sess.reload),
	}
	if sess.reporter != nil {
		boundaryOpts = append(boundaryOpts, errorboundary.WithReporter(sess.reporter))
	}
	if sess.fallback != nil {
		boundaryOpts = append(boundaryOpts, errorboundary.WithFallback(sess.fallback))
	}
	sess.boundary = errorboundary.New(sess.renderSurface, boundaryOpts...)
	return sess
}

// Start は健全性と性能の定期監視を開始する
func (s *Session) Start() error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	s.health.Start()
	s.perf.Start(s.cfg.PerfInterval)
	s.logger.Log("info", "session: monitoring started")
	return nil
}

// Close はすべての監視とポリシーを停止し、ログを書き出す。何度呼んでもよい
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.ux.Destroy()
	s.perf.Destroy()
	s.health.Destroy()
	s.bus.Shutdown()
	s.logger.Log("info", "session: closed")
	s.logger.Flush()
}

// Load は保存されたコンテンツを編集面に読み込む。変換できない内容は空ドキュメントになる
func (s *Session) Load(raw any) error {
	if s.isClosed() {
		return ErrClosed
	}
	doc, warnings := s.store.DeserializeWithReport(raw)
	if !surface.Alive(s.surface) {
		return surface.ErrDestroyed
	}
	cmds := s.surface.Commands()
	if cmds == nil {
		return surface.ErrNoCommands
	}
	if err := cmds.SetContent(doc); err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	s.logger.Log("debug", fmt.Sprintf("session: loaded content with %d warnings", len(warnings)))
	return nil
}

// Snapshot は現在のドキュメントを保存用のエンベロープにする
func (s *Session) Snapshot() (content.StoredContent, error) {
	doc, err := s.document()
	if err != nil {
		return content.StoredContent{}, err
	}
	return s.store.Serialize(doc), nil
}

// Export は現在のドキュメントを指定の形式に変換する
func (s *Session) Export(format content.FormatTag) (string, error) {
	doc, err := s.document()
	if err != nil {
		return "", err
	}
	switch format {
	case content.FormatJSON:
		return document.Encode(doc)
	case content.FormatHTML:
		return s.store.JSONToHTML(doc), nil
	case content.FormatMarkdown:
		return s.store.JSONToMarkdown(doc), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// OnSave は自動保存の要求を購読する。戻り値で購読を解除する
func (s *Session) OnSave(fn SaveFunc) func() {
	return s.bus.On(event.TypeSaveRequested, func(ev event.Event) {
		if p, ok := ev.Payload.(event.SaveRequestedEvent); ok {
			fn(p.Content, p.Timestamp)
		}
	})
}

// OnHealthChange は健全性の変化を購読する
func (s *Session) OnHealthChange(fn func(health.Record)) func() {
	return s.bus.On(event.TypeHealthChanged, func(ev event.Event) {
		if p, ok := ev.Payload.(event.HealthChangedEvent); ok {
			fn(p.Record)
		}
	})
}

// HealthIndicator はホストの表示用に最新の健全性状態を返す
func (s *Session) HealthIndicator() health.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indicator
}

// Render はエラー境界の中で編集面を描画する
func (s *Session) Render(ctx context.Context) error {
	return s.boundary.Render(errorboundary.WithRenderContext(ctx, map[string]any{
		"health": s.HealthIndicator().String(),
	}))
}

// Store はコンテンツ変換を返す
func (s *Session) Store() *contentstore.Manager { return s.store }

// Health は健全性モニターを返す
func (s *Session) Health() *healthmonitor.Monitor { return s.health }

// Perf は性能モニターを返す
func (s *Session) Perf() *perfmonitor.Monitor { return s.perf }

// UX はUXポリシーエンジンを返す
func (s *Session) UX() *uxpolicy.Engine { return s.ux }

// Boundary はエラー境界を返す
func (s *Session) Boundary() *errorboundary.Boundary { return s.boundary }

// Bus はイベントバスを返す
func (s *Session) Bus() *event.Bus { return s.bus }

func (s *Session) onHealthChange(state health.State, record health.Record) {
	s.mu.Lock()
	s.indicator = state
	s.mu.Unlock()
	if state >= health.Error {
		s.logger.Log("warn", fmt.Sprintf("session: editor health is %s: %v", state, record.Issues))
	}
}

// renderSurface は編集面の状態を描画面に反映する
func (s *Session) renderSurface(context.Context) error {
	if !surface.Alive(s.surface) {
		return surface.ErrDestroyed
	}
	view := s.surface.View()
	if view == nil {
		return errors.New("editor view is not mounted")
	}
	view.RefreshState()
	return nil
}

func (s *Session) document() (*document.Node, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if !surface.Alive(s.surface) {
		return nil, surface.ErrDestroyed
	}
	doc, err := s.surface.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
