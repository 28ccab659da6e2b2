// event パッケージは編集面とパイプライン内で発生するイベントを定義します。
package event

import (
	"time"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/health"
)

// EventType はイベントの種類を表す型です。
type EventType string

// 定義済みイベントタイプ
const (
	TypeDocumentChanged  EventType = "document-changed"  // ドキュメント変更イベント
	TypeSelectionChanged EventType = "selection-changed" // 選択範囲変更イベント
	TypeFocus            EventType = "focus"             // フォーカス取得イベント
	TypeBlur             EventType = "blur"              // フォーカス喪失イベント
	TypeShortcut         EventType = "shortcut"          // キーボードショートカットイベント
	TypeSaveRequested    EventType = "save-requested"    // 保存要求イベント
	TypeHealthChanged    EventType = "health-changed"    // 健全性変化イベント
)

// Event はアプリケーション内で発生するイベントを表します。
type Event struct {
	Type    EventType // イベントの種類
	Payload any       // イベントデータ
}

// DocumentChangedEvent はドキュメント変更イベントのペイロードを表します。
type DocumentChangedEvent struct {
	Streaming bool // ストリーミングによる追記かどうか
}

// SelectionChangedEvent は選択範囲変更イベントのペイロードを表します。
type SelectionChangedEvent struct {
	Selection document.Range
}

// ShortcutEvent はキーボードショートカットのペイロードを表します。
type ShortcutEvent struct {
	Name string // ショートカット名 (例: "save")
}

// SaveRequestedEvent は保存要求イベントのペイロードを表します。
type SaveRequestedEvent struct {
	Content   content.StoredContent // 保存対象のシリアライズ済みドキュメント
	Timestamp time.Time             // 要求時刻
}

// HealthChangedEvent は健全性変化イベントのペイロードを表します。
type HealthChangedEvent struct {
	State  health.State
	Record health.Record
}

// NewEvent は新しいイベントを作成します。
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		Type:    eventType,
		Payload: payload,
	}
}

// NewDocumentChangedEvent は新しいドキュメント変更イベントを作成します。
func NewDocumentChangedEvent(streaming bool) Event {
	return NewEvent(TypeDocumentChanged, DocumentChangedEvent{Streaming: streaming})
}

// NewSelectionChangedEvent は新しい選択範囲変更イベントを作成します。
func NewSelectionChangedEvent(selection document.Range) Event {
	return NewEvent(TypeSelectionChanged, SelectionChangedEvent{Selection: selection})
}

// NewFocusEvent は新しいフォーカス取得イベントを作成します。
func NewFocusEvent() Event {
	return NewEvent(TypeFocus, nil)
}

// NewBlurEvent は新しいフォーカス喪失イベントを作成します。
func NewBlurEvent() Event {
	return NewEvent(TypeBlur, nil)
}

// NewShortcutEvent は新しいショートカットイベントを作成します。
func NewShortcutEvent(name string) Event {
	return NewEvent(TypeShortcut, ShortcutEvent{Name: name})
}

// NewSaveRequestedEvent は新しい保存要求イベントを作成します。
func NewSaveRequestedEvent(stored content.StoredContent, at time.Time) Event {
	return NewEvent(TypeSaveRequested, SaveRequestedEvent{
		Content:   stored,
		Timestamp: at,
	})
}

// NewHealthChangedEvent は新しい健全性変化イベントを作成します。
func NewHealthChangedEvent(record health.Record) Event {
	return NewEvent(TypeHealthChanged, HealthChangedEvent{
		State:  record.State,
		Record: record,
	})
}

// IsStreaming はドキュメント変更イベントがストリーミング由来かどうかを返します。
func (e Event) IsStreaming() bool {
	if p, ok := e.Payload.(DocumentChangedEvent); ok {
		return p.Streaming
	}
	return false
}
