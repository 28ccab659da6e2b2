// errorboundary パッケージは編集面の描画を包み、描画中のエラーやパニックを捕捉して
// 代替表示(再試行・再読み込み)に切り替えます。
package errorboundary

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/fault"
)

// State は境界の状態
type State int

const (
	// StateNormal は子の描画を行う状態
	StateNormal State = iota
	// StateFaulted はエラーを捕捉し代替表示を行う状態
	StateFaulted
)

func (s State) String() string {
	if s == StateFaulted {
		return "faulted"
	}
	return "normal"
}

// ErrNoReload は再読み込みの処理が登録されていないことを示す
var ErrNoReload = errors.New("reload hook is not configured")

// RenderFunc は描画処理
type RenderFunc func(ctx context.Context) error

// FallbackFunc は捕捉したエラーを受け取って代替表示を描画する
type FallbackFunc func(ctx context.Context, f *Fault, b *Boundary) error

// Reporter はエラーレポートの送信先
type Reporter interface {
	Report(report fault.Report) error
}

// Fault は捕捉したエラーの記録
type Fault struct {
	ID            string
	Err           error
	Stack         string
	RenderContext map[string]any
	At            time.Time
}

// Option は Boundary の構築オプション
type Option func(*Boundary)

// WithFallback は代替表示を指定する
func WithFallback(fn FallbackFunc) Option {
	return func(b *Boundary) {
		if fn != nil {
			b.fallback = fn
		}
	}
}

// WithOnError はエラー捕捉時のコールバックを指定する
func WithOnError(fn func(*Fault)) Option {
	return func(b *Boundary) {
		b.onError = fn
	}
}

// WithReporter はレポートの送信先を指定する
func WithReporter(r Reporter) Option {
	return func(b *Boundary) {
		b.reporter = r
	}
}

// WithEnvironment は実行環境を指定する
func WithEnvironment(env config.Environment) Option {
	return func(b *Boundary) {
		b.env = env
	}
}

// WithReload は再読み込みの処理を指定する
func WithReload(fn func()) Option {
	return func(b *Boundary) {
		b.reload = fn
	}
}

// WithLogger はロガーを指定する
func WithLogger(logger core.Logger) Option {
	return func(b *Boundary) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock は時計を指定する
func WithClock(now func() time.Time) Option {
	return func(b *Boundary) {
		if now != nil {
			b.now = now
		}
	}
}

// Boundary はエラー境界
// Faulted から自動で Normal に戻ることはなく、Retry でのみ復帰する
type Boundary struct {
	mu       sync.Mutex
	children RenderFunc
	fallback FallbackFunc
	onError  func(*Fault)
	reporter Reporter
	reload   func()
	env      config.Environment
	logger   core.Logger
	now      func() time.Time

	state State
	fault *Fault
}

// New は children を包む境界を作成する
func New(children RenderFunc, opts ...Option) *Boundary {
	b := &Boundary{
		children: children,
		fallback: func(context.Context, *Fault, *Boundary) error { return nil },
		env:      config.DetectEnvironment(),
		logger:   nopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State は現在の状態を返す
func (b *Boundary) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Fault は捕捉したエラーを返す。Normal のときは nil
func (b *Boundary) Fault() *Fault {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fault
}

// Render は状態に応じて子または代替表示を描画する
// 子の描画エラーは境界の中で処理されるため返さない。代替表示のエラーはそのまま返す
func (b *Boundary) Render(ctx context.Context) error {
	b.mu.Lock()
	state := b.state
	f := b.fault
	b.mu.Unlock()

	if state == StateFaulted {
		return b.fallback(ctx, f, b)
	}

	stack, err := b.renderChildren(ctx)
	if err == nil {
		return nil
	}
	f = b.capture(ctx, err, stack)
	return b.fallback(ctx, f, b)
}

// Retry はエラーを消去して子を再描画する
func (b *Boundary) Retry(ctx context.Context) error {
	b.mu.Lock()
	b.state = StateNormal
	b.fault = nil
	b.mu.Unlock()
	b.logger.Log("info", "boundary: retrying render")
	return b.Render(ctx)
}

// Reload はホストの再読み込み処理を呼び出す
func (b *Boundary) Reload() error {
	if b.reload == nil {
		return ErrNoReload
	}
	b.logger.Log("info", "boundary: reload requested")
	b.reload()
	return nil
}

func (b *Boundary) renderChildren(ctx context.Context) (stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.CategoryRender, r)
			stack = string(debug.Stack())
		}
	}()
	if b.children == nil {
		return "", nil
	}
	return "", b.children(ctx)
}

// capture はエラーを記録し、コールバックとレポート送信を行う
func (b *Boundary) capture(ctx context.Context, err error, stack string) *Fault {
	if stack == "" {
		stack = string(debug.Stack())
	}
	f := &Fault{
		ID:            uuid.NewString(),
		Err:           err,
		Stack:         stack,
		RenderContext: RenderContext(ctx),
		At:            b.now(),
	}

	b.mu.Lock()
	b.state = StateFaulted
	b.fault = f
	b.mu.Unlock()

	b.logger.Log("error", fmt.Sprintf("boundary: render failed (%s): %v", f.ID, err))

	if b.onError != nil {
		b.onError(f)
	}
	if b.reporter != nil && b.env.ShouldReport() {
		b.report(f)
	}
	return f
}

func (b *Boundary) report(f *Fault) {
	structured := fault.New(fault.CategoryRender, "editor render failed", f.Err)
	for k, v := range f.RenderContext {
		structured.WithContext(k, v)
	}
	report := fault.NewReport(structured, f.Stack, f.At)
	report.ID = f.ID
	if err := b.reporter.Report(report); err != nil {
		b.logger.Log("warn", fmt.Sprintf("boundary: failed to send report: %v", err))
	}
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
