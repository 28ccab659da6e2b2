package memsurface

import (
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

type view struct {
	s *Surface
}

func (v *view) Root() surface.Element {
	return &element{s: v.s}
}

func (v *view) RefreshState() {
	v.s.mu.Lock()
	v.s.refreshCount++
	hook := v.s.refreshHook
	v.s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (v *view) CaretRect(pos int) (surface.Rect, bool) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if pos < 0 || pos > document.ContentSize(v.s.doc) {
		return surface.Rect{}, false
	}
	line, ok := caretLine(v.s.doc, v.s.cols, pos)
	if !ok {
		return surface.Rect{}, false
	}
	top := line * LineHeight
	return surface.Rect{Top: top, Bottom: top + LineHeight}, true
}

type element struct {
	s *Surface
}

func (e *element) IsConnected() bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.connected
}

// DescendantCount はブロック要素・インライン要素・マーク要素の数を数える
func (e *element) DescendantCount() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	count := 0
	document.Walk(e.s.doc, func(n *document.Node) bool {
		if n.Type == document.TypeDoc {
			return true
		}
		if !n.IsText() {
			count++
		}
		count += len(n.Marks)
		return true
	})
	return count
}

func (e *element) ScrollTop() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.scrollTop
}

func (e *element) ScrollHeight() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	_, lines := layout(e.s.doc, e.s.cols)
	h := lines * LineHeight
	if h < e.s.clientHeight {
		return e.s.clientHeight
	}
	return h
}

func (e *element) ClientHeight() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.clientHeight
}

func (e *element) ScrollTo(top int, smooth bool) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if top < 0 {
		top = 0
	}
	e.s.scrollTop = top
	e.s.scrolls = append(e.s.scrolls, ScrollCall{Top: top, Smooth: smooth})
}
