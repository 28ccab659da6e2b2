package uxpolicy

import (
	"sync"
	"time"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
)

// Debouncer は連続したトリガーを静穏期間の後の1回の実行にまとめる
// 実行されるのは最後にトリガーされた値
type Debouncer[T any] struct {
	mu      sync.Mutex
	sched   scheduler.Scheduler
	delay   time.Duration
	fn      func(T)
	timer   scheduler.Timer
	pending bool
	value   T
	seq     uint64
}

// NewDebouncer は新しい Debouncer を作成する
func NewDebouncer[T any](sched scheduler.Scheduler, delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		sched: sched,
		delay: delay,
		fn:    fn,
	}
}

// Trigger はタイマーをリセットし、v を実行待ちにする
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = true
	d.value = v
	seq := d.seq
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// TriggerIfIdle は実行待ちがない場合に限り Trigger する
// 実行待ちがあればタイマーを延長しない
func (d *Debouncer[T]) TriggerIfIdle(v T) bool {
	d.mu.Lock()
	pending := d.pending
	d.mu.Unlock()
	if pending {
		return false
	}
	d.Trigger(v)
	return true
}

// Cancel は実行待ちを破棄する。破棄したものがあれば true
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.pending
	d.stopLocked()
	return pending
}

// Flush は実行待ちがあれば即座に実行する
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.stopLocked()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Pending は実行待ちがあるかどうかを返す
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetDelay は次回以降のトリガーの待ち時間を変更する
func (d *Debouncer[T]) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

func (d *Debouncer[T]) stopLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	var zero T
	d.value = zero
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	var zero T
	d.value = zero
	d.mu.Unlock()

	d.fn(v)
}
