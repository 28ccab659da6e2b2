package event

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBusClosed はシャットダウン後のバスに発行したときのエラーです。
var ErrBusClosed = errors.New("event bus is shut down")

// Subscription は購読の登録を表します。Unsubscribe で解除します。
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe は購読を解除します。複数回呼んでも安全です。
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.remove(s.id)
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus はイベントの発行と購読を管理するイベントバスです。
// 発行は呼び出し元のゴルーチンで同期的に配送されます。
type Bus struct {
	handlers  map[EventType][]entry
	mutex     sync.RWMutex
	nextID    uint64
	closed    bool
	unhandled func(Event)
}

// NewBus は新しいイベントバスを作成します。
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]entry),
	}
}

// Subscribe はイベントタイプに対するハンドラーを登録します。
func (b *Bus) Subscribe(handler Handler) Subscription {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.nextID++
	id := b.nextID
	for _, eventType := range handler.EventTypes() {
		b.handlers[eventType] = append(b.handlers[eventType], entry{id: id, handler: handler})
	}
	return Subscription{bus: b, id: id}
}

// On は単一のイベントタイプに関数を登録し、解除用の関数を返します。
func (b *Bus) On(eventType EventType, fn func(Event)) func() {
	sub := b.Subscribe(listener{eventType: eventType, fn: fn})
	return sub.Unsubscribe
}

// remove は指定IDの登録をすべてのイベントタイプから削除します。
func (b *Bus) remove(id uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for eventType, entries := range b.handlers {
		kept := entries[:0:0]
		for _, e := range entries {
			if e.id != id {
				kept = append(kept, e)
			}
		}
		b.handlers[eventType] = kept
	}
}

// HandlerCount は登録済みのハンドラー数を返します。
func (b *Bus) HandlerCount(eventType EventType) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.handlers[eventType])
}

// OnUnhandled はどの購読者も扱わなかったイベントを受け取る関数を設定します。nil で解除します。
func (b *Bus) OnUnhandled(fn func(Event)) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.unhandled = fn
}

// Publish はイベントを登録済みのハンドラーに配送します。
// ハンドラーのエラーは最後のものを返します。
func (b *Bus) Publish(event Event) error {
	b.mutex.RLock()
	if b.closed {
		b.mutex.RUnlock()
		return ErrBusClosed
	}
	// 配送中の登録・解除に影響されないようコピーする
	entries := append([]entry(nil), b.handlers[event.Type]...)
	unhandled := b.unhandled
	b.mutex.RUnlock()

	var handled bool
	var lastErr error

	for _, e := range entries {
		success, err := e.handler.HandleEvent(event)
		if err != nil {
			lastErr = fmt.Errorf("handler error: %w", err)
		}
		if success {
			handled = true
		}
	}

	if !handled && unhandled != nil {
		unhandled(event)
	}

	return lastErr
}

// Shutdown はイベントバスを終了します。以降の発行は無視されます。
func (b *Bus) Shutdown() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.closed = true
	b.handlers = make(map[EventType][]entry)
}
