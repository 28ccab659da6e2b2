// memsurface パッケージはメモリ上で動作する編集面の実装を提供します。
// CLIホストとテストで外部の編集エンジンの代わりに使います。
package memsurface

import (
	"fmt"
	"sync"

	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

// Option は Surface の構築オプション
type Option func(*Surface)

// WithoutView は描画面を持たない編集面を作る
func WithoutView() Option {
	return func(s *Surface) { s.hasView = false }
}

// WithoutState は内部状態を持たない編集面を作る
func WithoutState() Option {
	return func(s *Surface) { s.hasState = false }
}

// WithoutCommands はコマンドインターフェースを持たない編集面を作る
func WithoutCommands() Option {
	return func(s *Surface) { s.hasCommands = false }
}

// WithViewport は表示領域の高さ(px)と折り返し桁数を指定する
func WithViewport(heightPx, cols int) Option {
	return func(s *Surface) {
		s.clientHeight = heightPx
		s.cols = cols
	}
}

// WithDocument は初期ドキュメントを指定する
func WithDocument(doc *document.Node) Option {
	return func(s *Surface) {
		if doc != nil {
			s.doc = doc.Clone()
		}
	}
}

// ScrollCall は ScrollTo の呼び出し記録
type ScrollCall struct {
	Top    int
	Smooth bool
}

// Surface はメモリ上の編集面
type Surface struct {
	mu           sync.Mutex
	bus          *event.Bus
	doc          *document.Node
	selection    document.Range
	version      uint64
	destroyed    bool
	focused      bool
	hasView      bool
	hasState     bool
	hasCommands  bool
	connected    bool
	scrollTop    int
	clientHeight int
	cols         int
	scrolls      []ScrollCall
	refreshCount int
	readErr      error
	readPanic    bool
	refreshHook  func()
}

// New は新しい編集面を作成する
func New(opts ...Option) *Surface {
	s := &Surface{
		bus:          event.NewBus(),
		doc:          document.Empty(),
		hasView:      true,
		hasState:     true,
		hasCommands:  true,
		connected:    true,
		clientHeight: 400,
		cols:         80,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ surface.Surface = (*Surface)(nil)

// IsDestroyed は破棄済みかどうかを返す
func (s *Surface) IsDestroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Document は現在のドキュメントのコピーを返す
func (s *Surface) Document() (*document.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readPanic {
		panic("memsurface: document read failed")
	}
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.destroyed {
		return nil, surface.ErrDestroyed
	}
	return s.doc.Clone(), nil
}

// View は描画面を返す。持たない設定の場合は nil
func (s *Surface) View() surface.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasView {
		return nil
	}
	return &view{s: s}
}

// State は内部状態を返す。持たない設定の場合は nil
func (s *Surface) State() *surface.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasState {
		return nil
	}
	return &surface.State{Selection: s.selection, Version: s.version}
}

// Commands はコマンドインターフェースを返す。持たない設定の場合は nil
func (s *Surface) Commands() surface.Commands {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCommands {
		return nil
	}
	return &commands{s: s}
}

// On はイベントを購読する
func (s *Surface) On(eventType event.EventType, fn func(event.Event)) func() {
	return s.bus.On(eventType, fn)
}

// ListenerCount は指定イベントの購読数を返す
func (s *Surface) ListenerCount(eventType event.EventType) int {
	return s.bus.HandlerCount(eventType)
}

// emit はロックの外でイベントを配送する
func (s *Surface) emit(e event.Event) {
	s.bus.Publish(e)
}

// AppendParagraph は段落を末尾に追加し、変更イベントを発行する
func (s *Surface) AppendParagraph(text string, streaming bool) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if text == "" {
		s.doc.Content = append(s.doc.Content, document.NewParagraph())
	} else {
		s.doc.Content = append(s.doc.Content, document.NewParagraph(document.NewText(text)))
	}
	s.version++
	s.mu.Unlock()
	s.emit(event.NewDocumentChangedEvent(streaming))
}

// InsertText は最後のブロックの末尾にテキストを追加し、変更イベントを発行する
func (s *Surface) InsertText(text string, streaming bool) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if len(s.doc.Content) == 0 {
		s.doc.Content = append(s.doc.Content, document.NewParagraph())
	}
	last := s.doc.Content[len(s.doc.Content)-1]
	if n := len(last.Content); n > 0 && last.Content[n-1].IsText() && len(last.Content[n-1].Marks) == 0 {
		last.Content[n-1].Text += text
	} else {
		last.Content = append(last.Content, document.NewText(text))
	}
	s.version++
	end := document.ContentSize(s.doc) - 1
	s.selection = document.Range{From: end, To: end}
	s.mu.Unlock()
	s.emit(event.NewDocumentChangedEvent(streaming))
}

// PressShortcut はキーボードショートカットを発行する
func (s *Surface) PressShortcut(name string) {
	s.emit(event.NewShortcutEvent(name))
}

// Detach は描画面をドキュメントツリーから切り離す
func (s *Surface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

// Destroy は編集面を破棄する
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

// FailReads は Document の読み出しを err で失敗させる。nil で解除
func (s *Surface) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// PanicOnRead は Document の読み出しでパニックさせる
func (s *Surface) PanicOnRead(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readPanic = enabled
}

// RestoreView は描画面を再び持たせる
func (s *Surface) RestoreView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasView = true
	s.connected = true
}

// SetRefreshHook は RefreshState が呼ばれたときの処理を設定する
func (s *Surface) SetRefreshHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshHook = fn
}

// Scrolls は ScrollTo の呼び出し記録を返す
func (s *Surface) Scrolls() []ScrollCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ScrollCall(nil), s.scrolls...)
}

// RefreshCount は RefreshState の呼び出し回数を返す
func (s *Surface) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCount
}

// Focused はフォーカスがあるかどうかを返す
func (s *Surface) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Selection は現在の選択範囲を返す
func (s *Surface) Selection() document.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// String はデバッグ用の概要を返す
func (s *Surface) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memsurface(blocks=%d, version=%d, destroyed=%v)", len(s.doc.Content), s.version, s.destroyed)
}
