package scheduler

import (
	"sync"
	"time"
)

// Manual は時刻を手動で進めるスケジューラ
// Advance を呼んだゴルーチン上で期限を迎えたコールバックを時刻順に同期実行する
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	owner  *Manual
	due    time.Time
	period time.Duration
	fn     func()
	seq    uint64
	active bool
}

// NewManual は start を現在時刻とする手動スケジューラを作成する
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// AfterFunc は d 経過後に fn を1回実行する予約を行う
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every は d ごとに fn を実行する予約を行う
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{
		owner:  m,
		due:    m.now.Add(d),
		period: period,
		fn:     fn,
		seq:    m.seq,
		active: true,
	}
	m.timers = append(m.timers, t)
	return t
}

// Now は現在時刻を返す
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance は時刻を d 進め、その間に期限を迎えたコールバックを実行する
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.compactLocked()
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.period > 0 {
			next.due = next.due.Add(next.period)
		} else {
			next.active = false
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

// nextDueLocked は target までに期限を迎える最も早いタイマーを返す
func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if !t.active || t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) compactLocked() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if t.active {
			kept = append(kept, t)
		}
	}
	m.timers = kept
}

// Pending は実行待ちのタイマー数を返す
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if t.active {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	wasActive := t.active
	t.active = false
	return wasActive
}
