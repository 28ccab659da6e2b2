package memsurface

import (
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

type commands struct {
	s *Surface
}

func (c *commands) Focus() error {
	c.s.mu.Lock()
	if c.s.destroyed {
		c.s.mu.Unlock()
		return surface.ErrDestroyed
	}
	c.s.focused = true
	c.s.mu.Unlock()
	c.s.emit(event.NewFocusEvent())
	return nil
}

func (c *commands) Blur() error {
	c.s.mu.Lock()
	if c.s.destroyed {
		c.s.mu.Unlock()
		return surface.ErrDestroyed
	}
	c.s.focused = false
	c.s.mu.Unlock()
	c.s.emit(event.NewBlurEvent())
	return nil
}

func (c *commands) SetSelection(r document.Range) error {
	c.s.mu.Lock()
	if c.s.destroyed {
		c.s.mu.Unlock()
		return surface.ErrDestroyed
	}
	if !r.Valid(document.ContentSize(c.s.doc)) {
		c.s.mu.Unlock()
		return surface.ErrInvalidRange
	}
	c.s.selection = r
	c.s.mu.Unlock()
	c.s.emit(event.NewSelectionChangedEvent(r))
	return nil
}

func (c *commands) SetContent(doc *document.Node) error {
	c.s.mu.Lock()
	if c.s.destroyed {
		c.s.mu.Unlock()
		return surface.ErrDestroyed
	}
	if doc == nil {
		doc = document.Empty()
	}
	c.s.doc = doc.Clone()
	c.s.selection = document.Range{}
	c.s.version++
	c.s.mu.Unlock()
	c.s.emit(event.NewDocumentChangedEvent(false))
	return nil
}

// DeleteRange はトップレベルブロックの境界に揃った範囲だけを削除する
func (c *commands) DeleteRange(r document.Range) error {
	c.s.mu.Lock()
	if c.s.destroyed {
		c.s.mu.Unlock()
		return surface.ErrDestroyed
	}
	ranges := document.TopLevelRanges(c.s.doc)
	first, last := -1, -1
	for i, br := range ranges {
		if br.From == r.From {
			first = i
		}
		if br.To == r.To {
			last = i
		}
	}
	if r.Empty() || first < 0 || last < first {
		c.s.mu.Unlock()
		return surface.ErrInvalidRange
	}
	content := append([]*document.Node{}, c.s.doc.Content[:first]...)
	content = append(content, c.s.doc.Content[last+1:]...)
	if len(content) == 0 {
		content = append(content, document.NewParagraph())
	}
	c.s.doc.Content = content
	size := document.ContentSize(c.s.doc)
	if c.s.selection.To > size {
		c.s.selection = document.Range{From: size, To: size}
	}
	c.s.version++
	c.s.mu.Unlock()
	c.s.emit(event.NewDocumentChangedEvent(false))
	return nil
}
