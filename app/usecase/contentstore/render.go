package contentstore

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/wasya-io/kilonote/app/entity/document"
)

// renderHTML は構造化ドキュメントをHTMLに変換する
func renderHTML(doc *document.Node) string {
	var sb strings.Builder
	for _, child := range doc.Content {
		renderNode(&sb, child)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *document.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case document.TypeText:
		renderText(sb, n)
	case document.TypeParagraph:
		wrap(sb, "p", "", n)
	case document.TypeHeading:
		level := n.AttrInt("level", 1)
		if level < 1 || level > 6 {
			level = 1
		}
		wrap(sb, fmt.Sprintf("h%d", level), "", n)
	case document.TypeBulletList:
		wrap(sb, "ul", "", n)
	case document.TypeOrderedList:
		attrs := ""
		if start := n.AttrInt("start", 1); start != 1 {
			attrs = fmt.Sprintf(` start="%d"`, start)
		}
		wrap(sb, "ol", attrs, n)
	case document.TypeListItem:
		wrap(sb, "li", "", n)
	case document.TypeTaskList:
		wrap(sb, "ul", ` data-type="taskList"`, n)
	case document.TypeTaskItem:
		wrap(sb, "li", fmt.Sprintf(` data-type="taskItem" data-checked="%t"`, n.AttrBool("checked")), n)
	case document.TypeBlockquote:
		wrap(sb, "blockquote", "", n)
	case document.TypeCodeBlock:
		sb.WriteString("<pre><code")
		if lang := n.AttrString("language"); lang != "" {
			sb.WriteString(` class="language-` + html.EscapeString(lang) + `"`)
		}
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(n.TextContent()))
		sb.WriteString("</code></pre>")
	case document.TypeHorizontalRule:
		sb.WriteString("<hr>")
	case document.TypeHardBreak:
		sb.WriteString("<br>")
	case document.TypeImage:
		sb.WriteString(`<img src="` + html.EscapeString(n.AttrString("src")) + `"`)
		if alt := n.AttrString("alt"); alt != "" {
			sb.WriteString(` alt="` + html.EscapeString(alt) + `"`)
		}
		if title := n.AttrString("title"); title != "" {
			sb.WriteString(` title="` + html.EscapeString(title) + `"`)
		}
		sb.WriteString(">")
	default:
		// 未知のノードは子だけを出力する
		for _, child := range n.Content {
			renderNode(sb, child)
		}
	}
}

func wrap(sb *strings.Builder, tag, attrs string, n *document.Node) {
	sb.WriteString("<" + tag + attrs + ">")
	for _, child := range n.Content {
		renderNode(sb, child)
	}
	sb.WriteString("</" + tag + ">")
}

func renderText(sb *strings.Builder, n *document.Node) {
	for _, m := range n.Marks {
		sb.WriteString(openMark(m))
	}
	sb.WriteString(html.EscapeString(n.Text))
	for i := len(n.Marks) - 1; i >= 0; i-- {
		sb.WriteString(closeMark(n.Marks[i]))
	}
}

func markTag(m document.Mark) string {
	switch m.Type {
	case document.MarkBold:
		return "strong"
	case document.MarkItalic:
		return "em"
	case document.MarkStrike:
		return "s"
	case document.MarkCode:
		return "code"
	case document.MarkUnderline:
		return "u"
	case document.MarkLink:
		return "a"
	}
	return ""
}

func openMark(m document.Mark) string {
	tag := markTag(m)
	if tag == "" {
		return ""
	}
	if m.Type != document.MarkLink {
		return "<" + tag + ">"
	}
	href, _ := m.Attrs["href"].(string)
	out := `<a href="` + html.EscapeString(href) + `"`
	if title, _ := m.Attrs["title"].(string); title != "" {
		out += ` title="` + html.EscapeString(title) + `"`
	}
	return out + ">"
}

func closeMark(m document.Mark) string {
	if tag := markTag(m); tag != "" {
		return "</" + tag + ">"
	}
	return ""
}
