package contentstore

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultCacheSize はMarkdown変換結果のキャッシュ件数
const DefaultCacheSize = 64

// newMarkdown は限定的なMarkdown文法用の変換器を作る
// 拡張は打ち消し線のみ。ブロックHTMLは CommonMark の固定タグ一覧に該当するものだけがそのまま通り、
// 後段のサニタイザで無害化される
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// markdownRenderer はMarkdownからHTMLへの変換結果をキャッシュする
type markdownRenderer struct {
	md    goldmark.Markdown
	cache *lru.Cache[string, string]
}

func newMarkdownRenderer(size int) *markdownRenderer {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		// size は正の値なのでここには来ない
		cache = nil
	}
	return &markdownRenderer{md: newMarkdown(), cache: cache}
}

// Render はMarkdownをHTMLに変換する
func (r *markdownRenderer) Render(src string) (string, error) {
	if r.cache != nil {
		if out, ok := r.cache.Get(src); ok {
			return out, nil
		}
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	out := buf.String()
	if r.cache != nil {
		r.cache.Add(src, out)
	}
	return out, nil
}

// Cached はキャッシュされている件数を返す
func (r *markdownRenderer) Cached() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}
