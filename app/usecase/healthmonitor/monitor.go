// healthmonitor パッケージは編集面の健全性を定期的に診断し、可能なら自動復旧を試みます。
package healthmonitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

const (
	// DefaultInterval は診断の間隔
	DefaultInterval = 5 * time.Second
	// MaxRecoveryAttempts はクールダウン期間内の最大復旧試行回数
	MaxRecoveryAttempts = 3
	// RecoveryCooldown は試行回数をリセットするまでの期間
	RecoveryCooldown = 30 * time.Second
)

// StateChangeFunc は状態が前回の診断から変わったときに呼ばれる
type StateChangeFunc func(state health.State, record health.Record)

// Option は Monitor の構築オプション
type Option func(*Monitor)

// WithInterval は診断の間隔を指定する
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
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

// WithBus は状態変化を通知するイベントバスを指定する
func WithBus(bus *event.Bus) Option {
	return func(m *Monitor) {
		m.bus = bus
	}
}

// Monitor は編集面の健全性モニター
type Monitor struct {
	mu          sync.Mutex
	surface     surface.Surface
	sched       scheduler.Scheduler
	onChange    StateChangeFunc
	logger      core.Logger
	bus         *event.Bus
	interval    time.Duration
	ticker      scheduler.Timer
	resetTimer  scheduler.Timer
	generation  uint64
	destroyed   bool
	lastState   health.State
	lastRecord  health.Record
	attempts    int
	cooldownSeq uint64
	actions     map[health.IssueKind]recoveryAction
}

// New は新しいモニターを作成する。監視は Start を呼ぶまで始まらない
func New(s surface.Surface, sched scheduler.Scheduler, onChange StateChangeFunc, opts ...Option) *Monitor {
	m := &Monitor{
		surface:    s,
		sched:      sched,
		onChange:   onChange,
		logger:     nopLogger{},
		interval:   DefaultInterval,
		lastState:  health.Healthy,
		lastRecord: health.NewRecord(),
		actions:    defaultActions(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start は即座に1回診断してから定期診断を開始する。何度呼んでもタイマーは1つだけ
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	m.poll(gen)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || gen != m.generation {
		return
	}
	m.ticker = m.sched.Every(m.interval, func() { m.poll(gen) })
}

// Stop は定期診断を止めて編集面への参照を手放す
// 以降の CheckNow は編集面なしとして診断され、復旧もクールダウンのタイマーも予約しない
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.surface = nil
}

func (m *Monitor) stopLocked() {
	m.generation++
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
	if m.resetTimer != nil {
		m.resetTimer.Stop()
		m.resetTimer = nil
	}
	m.cooldownSeq++
	m.attempts = 0
}

// Destroy は監視を止めて編集面への参照を手放す。何度呼んでもよい
func (m *Monitor) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.destroyed = true
	m.surface = nil
	m.onChange = nil
	m.bus = nil
}

// CheckNow は即座に診断し、状態変化の通知と必要な復旧を行う
func (m *Monitor) CheckNow() health.Record {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()
	return m.poll(gen)
}

// State は最後の診断結果の状態を返す
func (m *Monitor) State() health.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastState
}

// LastRecord は最後の診断結果を返す
func (m *Monitor) LastRecord() health.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRecord
}

// Attempts は現在のクールダウン期間内の復旧試行回数を返す
func (m *Monitor) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// poll は1回分の診断を行う。世代が変わっていれば何もしない
func (m *Monitor) poll(gen uint64) health.Record {
	m.mu.Lock()
	if m.destroyed || gen != m.generation {
		record := m.lastRecord
		m.mu.Unlock()
		return record
	}
	s := m.surface
	m.mu.Unlock()

	record := CheckHealth(s)

	m.mu.Lock()
	if m.destroyed || gen != m.generation {
		m.mu.Unlock()
		return record
	}
	changed := record.State != m.lastState
	m.lastState = record.State
	m.lastRecord = record
	onChange := m.onChange
	bus := m.bus
	m.mu.Unlock()

	if changed {
		m.logger.Log("info", fmt.Sprintf("health: state changed to %s", record.State))
		if onChange != nil {
			onChange(record.State, record)
		}
		if bus != nil {
			if err := bus.Publish(event.NewHealthChangedEvent(record)); err != nil {
				m.logger.Log("warn", fmt.Sprintf("health: failed to publish state change: %v", err))
			}
		}
	}

	if record.State == health.Error && record.Recoverable {
		m.attemptRecovery(gen, s, record)
	}
	return record
}
