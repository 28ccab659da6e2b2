package event

// Handler はバスに登録する購読者です。
// HandleEvent はイベントを扱った場合に true を返します。
type Handler interface {
	HandleEvent(e Event) (bool, error)
	EventTypes() []EventType
}

// listener は1つのイベントタイプに関数を結びつけた購読者です。
type listener struct {
	eventType EventType
	fn        func(Event)
}

func (l listener) HandleEvent(e Event) (bool, error) {
	if e.Type != l.eventType {
		return false, nil
	}
	l.fn(e)
	return true, nil
}

func (l listener) EventTypes() []EventType {
	return []EventType{l.eventType}
}
