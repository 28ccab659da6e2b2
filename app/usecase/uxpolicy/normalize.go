package uxpolicy

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/fault"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

// NormalizeHook は入力後の整形処理の拡張点
// 編集面を変更する場合は必ず Commands を経由する
type NormalizeHook func(s surface.Surface, doc *document.Node) error

// NFCHook はNFC正規化されていないテキストを検出する
func NFCHook(_ surface.Surface, doc *document.Node) error {
	count := 0
	document.Walk(doc, func(n *document.Node) bool {
		if n.IsText() && !norm.NFC.IsNormalString(n.Text) {
			count++
		}
		return true
	})
	if count > 0 {
		return fmt.Errorf("%d text nodes are not NFC normalized", count)
	}
	return nil
}

func runHook(hook NormalizeHook, s surface.Surface, doc *document.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.CategorySurface, r)
		}
	}()
	return hook(s, doc)
}
