package uxpolicy

import (
	"fmt"
	"unicode/utf8"

	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/fault"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

// onDocumentChanged はスクロール・入力後整形・自動保存の各ポリシーを起動する
func (e *Engine) onDocumentChanged(ev event.Event) {
	s, cfg, ok := e.live()
	if !ok {
		return
	}

	length := contentLength(s)
	e.mu.Lock()
	grew := length > e.lastLength
	e.lastLength = length
	streaming := e.streaming
	e.mu.Unlock()

	if streaming && ev.IsStreaming() {
		// 次のフレームで一度だけ末尾へ
		e.frame.TriggerIfIdle(struct{}{})
	} else if grew && cfg.Scroll.AutoScrollToNewContent {
		e.growth.TriggerIfIdle(cfg.Scroll.SmoothScrolling)
	}

	if cfg.ResponsiveTyping {
		e.typing.Trigger(struct{}{})
	}
	if cfg.AutoSave {
		e.autosave.Trigger(struct{}{})
	}
}

// scrollToBottom はルート要素を最大スクロール位置まで移動する
func (e *Engine) scrollToBottom(smooth bool) {
	s, _, ok := e.live()
	if !ok {
		return
	}
	view := s.View()
	if view == nil {
		return
	}
	root := view.Root()
	if root == nil {
		return
	}
	root.ScrollTo(root.ScrollHeight()-root.ClientHeight(), smooth)
}

// onSelectionChanged はキャレットが表示範囲外ならマージンを残して見える位置へスクロールする
func (e *Engine) onSelectionChanged(ev event.Event) {
	payload, ok := ev.Payload.(event.SelectionChangedEvent)
	if !ok {
		return
	}
	s, cfg, ok := e.live()
	if !ok {
		return
	}
	view := s.View()
	if view == nil {
		return
	}
	root := view.Root()
	if root == nil {
		return
	}
	caret, ok := view.CaretRect(payload.Selection.To)
	if !ok {
		return
	}

	margin := cfg.Scroll.ScrollMarginPx
	top := root.ScrollTop()
	height := root.ClientHeight()
	switch {
	case caret.Top < top+margin:
		root.ScrollTo(caret.Top-margin, cfg.Scroll.SmoothScrolling)
	case caret.Bottom > top+height-margin:
		root.ScrollTo(caret.Bottom-height+margin, cfg.Scroll.SmoothScrolling)
	}
}

// optimizeAfterTyping は連続する空段落を1つにまとめ、整形フックを実行する
func (e *Engine) optimizeAfterTyping() {
	s, cfg, ok := e.live()
	if !ok || !cfg.ResponsiveTyping {
		return
	}
	doc, err := readDocument(s)
	if err != nil {
		e.logger.Log("warn", fmt.Sprintf("ux: typing pass skipped: %v", err))
		return
	}

	if cmds := s.Commands(); cmds != nil {
		ranges := document.TopLevelRanges(doc)
		// 後ろから削除して手前の位置をずらさない
		for i := len(doc.Content) - 1; i > 0; i-- {
			if !doc.Content[i].IsEmptyParagraph() || !doc.Content[i-1].IsEmptyParagraph() {
				continue
			}
			if err := cmds.DeleteRange(ranges[i]); err != nil {
				e.logger.Log("warn", fmt.Sprintf("ux: failed to collapse empty paragraph: %v", err))
				break
			}
		}
	}

	for _, hook := range e.hooks {
		if err := runHook(hook, s, doc); err != nil {
			e.logger.Log("warn", fmt.Sprintf("ux: normalize: %v", err))
		}
	}
}

// requestSave は現在のドキュメントの保存要求を発行する
func (e *Engine) requestSave() {
	s, cfg, ok := e.live()
	if !ok || !cfg.AutoSave {
		return
	}
	doc, err := readDocument(s)
	if err != nil {
		e.logger.Log("warn", fmt.Sprintf("ux: autosave skipped: %v", err))
		return
	}
	if e.bus == nil {
		return
	}
	stored := e.serializer.Serialize(doc)
	if err := e.bus.Publish(event.NewSaveRequestedEvent(stored, e.sched.Now())); err != nil {
		e.logger.Log("warn", fmt.Sprintf("ux: save request not delivered: %v", err))
	}
}

// onShortcut は保存ショートカットで自動保存を即時実行する
func (e *Engine) onShortcut(ev event.Event) {
	payload, ok := ev.Payload.(event.ShortcutEvent)
	if !ok || payload.Name != ShortcutSave {
		return
	}
	if _, cfg, ok := e.live(); !ok || !cfg.AutoSave {
		return
	}
	e.autosave.Flush()
}

// onBlur は現在の選択範囲を退避する
func (e *Engine) onBlur(event.Event) {
	s, _, ok := e.live()
	if !ok {
		return
	}
	state := s.State()
	if state == nil {
		return
	}
	sel := state.Selection
	e.mu.Lock()
	e.savedSel = &sel
	e.mu.Unlock()
}

// onFocus は退避した選択範囲が現在のドキュメントで有効なら復元する
func (e *Engine) onFocus(event.Event) {
	s, _, ok := e.live()
	if !ok {
		return
	}
	e.mu.Lock()
	saved := e.savedSel
	e.savedSel = nil
	e.mu.Unlock()
	if saved == nil {
		return
	}

	cmds := s.Commands()
	if cmds == nil {
		return
	}
	doc, err := readDocument(s)
	if err != nil || !saved.Valid(document.ContentSize(doc)) {
		return
	}
	if err := cmds.SetSelection(*saved); err != nil {
		e.logger.Log("debug", fmt.Sprintf("ux: selection not restored: %v", err))
	}
}

// contentLength はシリアライズしたドキュメントの文字数を返す
func contentLength(s surface.Surface) int {
	if !surface.Alive(s) {
		return 0
	}
	doc, err := readDocument(s)
	if err != nil {
		return 0
	}
	encoded, err := document.Encode(doc)
	if err != nil {
		return 0
	}
	return utf8.RuneCountInString(encoded)
}

// readDocument は編集面のドキュメントを読み出す。読み出し中のパニックはエラーにする
func readDocument(s surface.Surface) (doc *document.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fault.FromPanic(fault.CategorySurface, r)
		}
	}()
	return s.Document()
}
