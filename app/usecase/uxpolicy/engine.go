// uxpolicy パッケージは編集面のイベントに応じてスクロール・自動保存・フォーカス復元などの
// UXポリシーを適用します。ストリーミング中は負荷の高いポリシーを一時停止します。
package uxpolicy

import (
	"sync"
	"time"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/surface"
	"github.com/wasya-io/kilonote/app/usecase/contentstore"
)

const (
	// GrowthScrollDelay は内容が増えてからスクロールするまでの待ち時間
	GrowthScrollDelay = 50 * time.Millisecond
	// TypingDelay は入力後の整形処理までの静穏期間
	TypingDelay = 300 * time.Millisecond
	// ShortcutSave は即時保存のショートカット名
	ShortcutSave = "save"
)

// Serializer はドキュメントを保存用のエンベロープに変換する
type Serializer interface {
	Serialize(c any) content.StoredContent
}

// Option は Engine の構築オプション
type Option func(*Engine)

// WithLogger はロガーを指定する
func WithLogger(logger core.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBus は保存要求を発行するイベントバスを指定する
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithSerializer は自動保存で使うシリアライザを指定する
func WithSerializer(s Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// WithNormalizeHook は入力後の整形処理にフックを追加する
func WithNormalizeHook(hook NormalizeHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

// streamSnapshot はストリーミング開始時に退避した設定
type streamSnapshot struct {
	responsiveTyping bool
	autoSave         bool
}

// Engine はUXポリシーエンジン
type Engine struct {
	mu         sync.Mutex
	surface    surface.Surface
	sched      scheduler.Scheduler
	logger     core.Logger
	bus        *event.Bus
	serializer Serializer
	hooks      []NormalizeHook

	cfg       config.UXConfig
	streaming bool
	snapshot  streamSnapshot
	destroyed bool

	unbind     []func()
	lastLength int
	savedSel   *document.Range

	growth   *Debouncer[bool]
	frame    *Debouncer[struct{}]
	typing   *Debouncer[struct{}]
	autosave *Debouncer[struct{}]
}

// New は編集面 s にポリシーを適用するエンジンを作成し、リスナーを登録する
func New(s surface.Surface, sched scheduler.Scheduler, cfg config.UXConfig, opts ...Option) *Engine {
	e := &Engine{
		surface:    s,
		sched:      sched,
		logger:     nopLogger{},
		serializer: contentstore.New(contentstore.WithClock(sched.Now)),
		cfg:        cfg,
		hooks:      []NormalizeHook{NFCHook},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.growth = NewDebouncer(sched, GrowthScrollDelay, e.scrollToBottom)
	e.frame = NewDebouncer(sched, scheduler.FrameDelay, func(struct{}) { e.scrollToBottom(false) })
	e.typing = NewDebouncer(sched, TypingDelay, func(struct{}) { e.optimizeAfterTyping() })
	e.autosave = NewDebouncer(sched, cfg.AutoSaveDelay, func(struct{}) { e.requestSave() })

	e.lastLength = contentLength(s)

	e.mu.Lock()
	e.bindLocked()
	e.mu.Unlock()
	return e
}

// Config は現在の設定を返す。ストリーミング中は上書き後の値
func (e *Engine) Config() config.UXConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Streaming はストリーミングモードかどうかを返す
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streaming
}

// EnableStreaming はストリーミングモードに入る
// 入力後整形と自動保存を退避してから無効にし、実行待ちのタイマーも取り消す
func (e *Engine) EnableStreaming() {
	e.mu.Lock()
	if e.destroyed || e.streaming {
		e.mu.Unlock()
		return
	}
	e.streaming = true
	e.snapshot = streamSnapshot{
		responsiveTyping: e.cfg.ResponsiveTyping,
		autoSave:         e.cfg.AutoSave,
	}
	e.cfg.ResponsiveTyping = false
	e.cfg.AutoSave = false
	e.mu.Unlock()

	e.typing.Cancel()
	e.autosave.Cancel()
	e.logger.Log("debug", "ux: streaming enabled")
}

// DisableStreaming はストリーミングモードを抜け、退避した設定を戻す
func (e *Engine) DisableStreaming() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || !e.streaming {
		return
	}
	e.streaming = false
	e.cfg.ResponsiveTyping = e.snapshot.responsiveTyping
	e.cfg.AutoSave = e.snapshot.autoSave
	e.logger.Log("debug", "ux: streaming disabled")
}

// UpdateConfig は設定を部分更新し、リスナーを登録し直す
// ストリーミング中の入力後整形・自動保存の変更は退避中の値に反映する
func (e *Engine) UpdateConfig(patch config.UXPatch) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	next := e.cfg.Apply(patch)
	if e.streaming {
		if patch.ResponsiveTyping != nil {
			e.snapshot.responsiveTyping = *patch.ResponsiveTyping
		}
		if patch.AutoSave != nil {
			e.snapshot.autoSave = *patch.AutoSave
		}
		next.ResponsiveTyping = false
		next.AutoSave = false
	}
	e.cfg = next
	e.unbindLocked()
	e.bindLocked()
	e.mu.Unlock()

	e.autosave.SetDelay(next.AutoSaveDelay)
	if !next.ResponsiveTyping {
		e.typing.Cancel()
	}
	if !next.AutoSave {
		e.autosave.Cancel()
	}
}

// Destroy はリスナーとタイマーを解除し、編集面への参照を手放す。何度呼んでもよい
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.unbindLocked()
	e.surface = nil
	e.savedSel = nil
	e.mu.Unlock()

	e.growth.Cancel()
	e.frame.Cancel()
	e.typing.Cancel()
	e.autosave.Cancel()
}

// bindLocked は設定に応じて編集面のイベントを購読する
func (e *Engine) bindLocked() {
	s := e.surface
	if s == nil {
		return
	}
	e.unbind = append(e.unbind,
		s.On(event.TypeDocumentChanged, e.onDocumentChanged),
		s.On(event.TypeSelectionChanged, e.onSelectionChanged),
	)
	if e.cfg.FocusManagement {
		e.unbind = append(e.unbind,
			s.On(event.TypeBlur, e.onBlur),
			s.On(event.TypeFocus, e.onFocus),
		)
	}
	if e.cfg.KeyboardShortcuts {
		e.unbind = append(e.unbind, s.On(event.TypeShortcut, e.onShortcut))
	}
}

func (e *Engine) unbindLocked() {
	for _, off := range e.unbind {
		off()
	}
	e.unbind = nil
}

// live は生きている編集面と現在の設定を返す
func (e *Engine) live() (surface.Surface, config.UXConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || !surface.Alive(e.surface) {
		return nil, e.cfg, false
	}
	return e.surface, e.cfg, true
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
