package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop はコールバックを1本のゴルーチンで順番に実行するイベントループ
// タイマーが発火してもコールバックはループに積まれるだけで、並行には実行されない
type Loop struct {
	tasks  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoop は新しいイベントループを作成し、処理用のゴルーチンを開始する
func NewLoop() *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		tasks:  make(chan func(), 100), // バッファ付きチャネル
		ctx:    ctx,
		cancel: cancel,
	}

	l.wg.Add(1)
	go l.run()

	return l
}

// run はタスクを取り出して順番に実行する
func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.ctx.Done():
			return // コンテキストがキャンセルされたら終了
		}
	}
}

// Post はタスクをループに積む。ループが停止していれば false を返す
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.ctx.Done():
		return false
	default:
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// Do はタスクをループ上で実行し、完了するまで待つ
// ループ自身のゴルーチンから呼んではいけない
func (l *Loop) Do(task func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		task()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// AfterFunc は d 経過後に fn をループ上で1回実行する
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return t
}

// Every は d ごとに fn をループ上で実行する
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTicker{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if t.stopped.Load() {
						return
					}
					fn()
				})
			case <-t.done:
				return
			case <-l.ctx.Done():
				return
			}
		}
	}()
	return t
}

// Now は現在時刻を返す
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Shutdown はループを停止し、処理中のタスクの完了を待つ
func (l *Loop) Shutdown() {
	l.cancel()
	l.wg.Wait()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return !t.stopped.Swap(true)
}

type loopTicker struct {
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (t *loopTicker) Stop() bool {
	wasActive := !t.stopped.Swap(true)
	t.once.Do(func() { close(t.done) })
	return wasActive
}
