package config

import "time"

// UXPatch はUX設定の部分更新。nil のフィールドは変更しない
type UXPatch struct {
	SmoothScrolling        *bool
	AutoScrollToNewContent *bool
	ScrollMarginPx         *int
	ScrollDurationMs       *int
	ResponsiveTyping       *bool
	AutoSave               *bool
	AutoSaveDelay          *time.Duration
	FocusManagement        *bool
	KeyboardShortcuts      *bool
}

// Apply は部分更新を適用した新しい設定を返す
func (c UXConfig) Apply(p UXPatch) UXConfig {
	if p.SmoothScrolling != nil {
		c.Scroll.SmoothScrolling = *p.SmoothScrolling
	}
	if p.AutoScrollToNewContent != nil {
		c.Scroll.AutoScrollToNewContent = *p.AutoScrollToNewContent
	}
	if p.ScrollMarginPx != nil && *p.ScrollMarginPx >= 0 {
		c.Scroll.ScrollMarginPx = *p.ScrollMarginPx
	}
	if p.ScrollDurationMs != nil && *p.ScrollDurationMs >= 0 {
		c.Scroll.ScrollDurationMs = *p.ScrollDurationMs
	}
	if p.ResponsiveTyping != nil {
		c.ResponsiveTyping = *p.ResponsiveTyping
	}
	if p.AutoSave != nil {
		c.AutoSave = *p.AutoSave
	}
	if p.AutoSaveDelay != nil && *p.AutoSaveDelay > 0 {
		c.AutoSaveDelay = *p.AutoSaveDelay
	}
	if p.FocusManagement != nil {
		c.FocusManagement = *p.FocusManagement
	}
	if p.KeyboardShortcuts != nil {
		c.KeyboardShortcuts = *p.KeyboardShortcuts
	}
	return c
}

// Bool は UXPatch 用に bool のポインタを返す
func Bool(v bool) *bool {
	return &v
}

// Int は UXPatch 用に int のポインタを返す
func Int(v int) *int {
	return &v
}

// Duration は UXPatch 用に time.Duration のポインタを返す
func Duration(v time.Duration) *time.Duration {
	return &v
}
