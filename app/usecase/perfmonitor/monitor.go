// perfmonitor パッケージは編集面の描画・更新時間やメモリ使用量を計測し、改善策を提案・適用します。
// 計測の失敗はホストに伝えず、直前のサンプルを返します。
package perfmonitor

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/fault"
	"github.com/wasya-io/kilonote/app/entity/perf"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

const (
	// DefaultHistory はサンプル履歴の件数
	DefaultHistory = 100
	// DefaultInterval は定期計測の間隔
	DefaultInterval = 10 * time.Second
)

// Option は Monitor の構築オプション
type Option func(*Monitor)

// WithHistory はサンプル履歴の件数を指定する
func WithHistory(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.history = n
		}
	}
}

// WithLogger はロガーを指定する
func WithLogger(logger core.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEnvironment は実行環境を指定する
func WithEnvironment(env config.Environment) Option {
	return func(m *Monitor) {
		m.env = env
	}
}

// WithMemoryProbe はメモリ使用量(MB)の取得方法を指定する
func WithMemoryProbe(probe func() (float64, error)) Option {
	return func(m *Monitor) {
		if probe != nil {
			m.memory = probe
		}
	}
}

// WithStopwatch は処理時間の計測に使う時計を指定する
func WithStopwatch(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.stopwatch = now
		}
	}
}

// Monitor はパフォーマンスモニター
type Monitor struct {
	mu         sync.Mutex
	surface    surface.Surface
	sched      scheduler.Scheduler
	logger     core.Logger
	env        config.Environment
	history    int
	ring       *perf.Ring
	last       perf.Sample
	ticker     scheduler.Timer
	generation uint64
	destroyed  bool
	memory     func() (float64, error)
	stopwatch  func() time.Time
	gcHint     func()
}

// New は新しいモニターを作成する
func New(s surface.Surface, sched scheduler.Scheduler, opts ...Option) *Monitor {
	m := &Monitor{
		surface:   s,
		sched:     sched,
		logger:    nopLogger{},
		env:       config.DetectEnvironment(),
		history:   DefaultHistory,
		memory:    processMemoryMB,
		stopwatch: time.Now,
		gcHint:    debug.FreeOSMemory,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ring = perf.NewRing(m.history)
	return m
}

// Start は interval ごとの計測を開始する。何度呼んでもタイマーは1つだけ
func (m *Monitor) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	if m.ticker != nil {
		m.ticker.Stop()
	}
	m.generation++
	gen := m.generation
	m.ticker = m.sched.Every(interval, func() {
		m.mu.Lock()
		live := !m.destroyed && gen == m.generation
		m.mu.Unlock()
		if live {
			m.MeasureNow()
		}
	})
}

// Stop は定期計測を止める
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	m.generation++
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

// Destroy は計測を止めて編集面への参照を手放す
func (m *Monitor) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.destroyed = true
	m.surface = nil
}

// MeasureNow は1回計測し、成功したサンプルを履歴に追加する
// 編集面がない場合や計測に失敗した場合は直前のサンプルを返す
func (m *Monitor) MeasureNow() perf.Sample {
	m.mu.Lock()
	s := m.surface
	last := m.last
	destroyed := m.destroyed
	m.mu.Unlock()

	if destroyed || s == nil || s.IsDestroyed() {
		return last
	}

	sample, err := m.measure(s)
	if err != nil {
		m.logger.Log("warn", fmt.Sprintf("perf: measurement failed: %v", err))
		return last
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return m.last
	}
	m.ring.Push(sample)
	m.last = sample
	return sample
}

func (m *Monitor) measure(s surface.Surface) (sample perf.Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.CategoryMeasurement, r)
		}
	}()

	view := s.View()

	start := m.stopwatch()
	if view != nil {
		view.RefreshState()
	}
	sample.RenderTimeMs = millis(m.stopwatch().Sub(start))

	start = m.stopwatch()
	doc, err := s.Document()
	sample.UpdateTimeMs = millis(m.stopwatch().Sub(start))
	if err != nil {
		return perf.Sample{}, fault.New(fault.CategoryMeasurement, "content read failed", err)
	}

	if m.env.MemoryProbe {
		mb, err := m.memory()
		if err != nil {
			m.logger.Log("debug", fmt.Sprintf("perf: memory probe unavailable: %v", err))
		} else {
			sample.MemoryMB = mb
		}
	}

	if view != nil {
		if root := view.Root(); root != nil {
			sample.DOMNodeCount = root.DescendantCount()
		}
	}

	encoded, err := document.Encode(doc)
	if err != nil {
		return perf.Sample{}, fault.New(fault.CategoryMeasurement, "content encode failed", err)
	}
	sample.ContentLength = utf8.RuneCountInString(encoded)
	sample.CapturedAt = m.sched.Now()
	return sample, nil
}

// History は古い順のサンプル履歴を返す
func (m *Monitor) History() []perf.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Samples()
}

// Average は履歴の各フィールドの平均を返す。履歴が空ならゼロ値
func (m *Monitor) Average() perf.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Average()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
