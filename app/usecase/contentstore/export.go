package contentstore

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/document"
)

func newExporter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
}

// JSONToHTML は構造化ドキュメントをHTMLに変換する
// 不正なドキュメントは空文字列になる
func (m *Manager) JSONToHTML(doc *document.Node) (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.warn(newConversionError(content.FormatHTML, StageRender, panicError(r)))
			out = ""
		}
	}()
	if !document.Validate(doc) {
		m.warn(newConversionError(content.FormatHTML, StageRender, ErrInvalidTree))
		return ""
	}
	return renderHTML(doc)
}

// JSONToMarkdown は構造化ドキュメントをMarkdownに変換する
// 見出し・太字・斜体・打ち消し線・リンク以外の構造は保持されない場合がある
func (m *Manager) JSONToMarkdown(doc *document.Node) string {
	htmlText := m.JSONToHTML(doc)
	if htmlText == "" {
		return ""
	}
	md, err := m.exporter.ConvertString(htmlText)
	if err != nil {
		m.warn(newConversionError(content.FormatMarkdown, StageExport, err))
		return ""
	}
	return strings.TrimSpace(md)
}
