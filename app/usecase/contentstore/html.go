package contentstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wasya-io/kilonote/app/entity/document"
)

var (
	whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)
	languageClass = regexp.MustCompile(`^language-[\w+#-]+$`)
)

// newSanitizer はユーザー生成コンテンツ向けのポリシーに data-* 属性を加えたポリシーを作る
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowElements("s", "del", "strike", "u")
	p.AllowAttrs("class").Matching(languageClass).OnElements("code")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	return p
}

// htmlReader はサニタイズ済みHTMLを構造化ドキュメントに変換する
// 1回の変換ごとに作成し、警告を蓄積する
type htmlReader struct {
	warnings []Warning
	unknown  map[string]bool
}

func newHTMLReader() *htmlReader {
	return &htmlReader{unknown: make(map[string]bool)}
}

func (r *htmlReader) warnUnknown(tag string) {
	if r.unknown[tag] {
		return
	}
	r.unknown[tag] = true
	r.warnings = append(r.warnings, Warning{
		Kind:    WarningUnknownElement,
		Message: fmt.Sprintf("unsupported element <%s> flattened", tag),
	})
}

// parseHTML はHTML断片をパースしてトップレベルのブロック列を返す
func (r *htmlReader) parseHTML(src string) ([]*document.Node, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, err
	}
	// ParseFragment は兄弟関係を持つノード列を返すので一時的な親にぶら下げる
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return r.readBlocks(root.FirstChild), nil
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Hr,
		atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Main, atom.Nav, atom.Aside, atom.Figure, atom.Table,
		atom.Thead, atom.Tbody, atom.Tr, atom.Td, atom.Th, atom.Dl, atom.Dt, atom.Dd:
		return true
	}
	return false
}

// readBlocks は兄弟ノード列をブロックの並びとして読む
// ブロックの外にあるインライン要素は段落にまとめる
func (r *htmlReader) readBlocks(first *html.Node) []*document.Node {
	var (
		out    []*document.Node
		inline []*document.Node
	)
	flush := func() {
		if trimmed := trimInline(inline); len(trimmed) > 0 {
			out = append(out, document.NewParagraph(trimmed...))
		}
		inline = nil
	}
	for c := first; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			flush()
			out = append(out, r.readBlock(c)...)
			continue
		}
		inline = append(inline, r.readInline(c, nil)...)
	}
	flush()
	return out
}

// readNode は1つのノードだけをブロック列として読む
func (r *htmlReader) readNode(n *html.Node) []*document.Node {
	if isBlockElement(n) {
		return r.readBlock(n)
	}
	if inline := trimInline(r.readInline(n, nil)); len(inline) > 0 {
		return []*document.Node{document.NewParagraph(inline...)}
	}
	return nil
}

func (r *htmlReader) readBlock(n *html.Node) []*document.Node {
	switch n.DataAtom {
	case atom.P:
		return []*document.Node{document.NewParagraph(r.readParagraphContent(n)...)}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		return []*document.Node{document.NewHeading(level, r.readParagraphContent(n)...)}
	case atom.Ul:
		if attr(n, "data-type") == "taskList" {
			return []*document.Node{r.readList(n, document.TypeTaskList, nil)}
		}
		return []*document.Node{r.readList(n, document.TypeBulletList, nil)}
	case atom.Ol:
		start := 1
		if v, err := strconv.Atoi(attr(n, "start")); err == nil {
			start = v
		}
		return []*document.Node{r.readList(n, document.TypeOrderedList, map[string]any{"start": start})}
	case atom.Li:
		// リストの外に置かれた li はそのまま中身を取り出す
		return r.readBlocks(n.FirstChild)
	case atom.Blockquote:
		children := r.readBlocks(n.FirstChild)
		if len(children) == 0 {
			children = []*document.Node{document.NewParagraph()}
		}
		return []*document.Node{{Type: document.TypeBlockquote, Content: children}}
	case atom.Pre:
		return []*document.Node{r.readCodeBlock(n)}
	case atom.Hr:
		return []*document.Node{{Type: document.TypeHorizontalRule}}
	case atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main, atom.Nav, atom.Aside, atom.Figure:
		return r.readBlocks(n.FirstChild)
	default:
		r.warnUnknown(n.Data)
		return r.readBlocks(n.FirstChild)
	}
}

// readParagraphContent は段落・見出しの中身を読む
// <p><br></p> のように改行だけの中身は空として扱う
func (r *htmlReader) readParagraphContent(n *html.Node) []*document.Node {
	var inline []*document.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			// 段落内のブロック要素はテキストとして取り込む
			r.warnUnknown(c.Data)
			inline = append(inline, r.readInline(c, nil)...)
			continue
		}
		inline = append(inline, r.readInline(c, nil)...)
	}
	inline = trimInline(inline)
	if len(inline) == 1 && inline[0].Type == document.TypeHardBreak {
		return nil
	}
	return inline
}

func (r *htmlReader) readList(n *html.Node, listType string, attrs map[string]any) *document.Node {
	itemType := document.TypeListItem
	if listType == document.TypeTaskList {
		itemType = document.TypeTaskItem
	}
	list := &document.Node{Type: listType, Attrs: attrs, Content: []*document.Node{}}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
				continue
			}
			// li 以外の子は直前の項目に含める
			blocks := r.readNode(c)
			if len(blocks) == 0 {
				continue
			}
			if len(list.Content) == 0 {
				list.Content = append(list.Content, &document.Node{Type: itemType, Content: []*document.Node{}})
			}
			last := list.Content[len(list.Content)-1]
			last.Content = append(last.Content, blocks...)
			continue
		}
		item := &document.Node{Type: itemType, Content: r.readListItemContent(c)}
		if itemType == document.TypeTaskItem {
			item.Attrs = map[string]any{"checked": attr(c, "data-checked") == "true"}
		}
		list.Content = append(list.Content, item)
	}
	if len(list.Content) == 0 {
		list.Content = append(list.Content, &document.Node{Type: itemType, Content: []*document.Node{document.NewParagraph()}})
	}
	return list
}

func (r *htmlReader) readListItemContent(li *html.Node) []*document.Node {
	var (
		out    []*document.Node
		inline []*document.Node
	)
	flush := func() {
		if trimmed := trimInline(inline); len(trimmed) > 0 {
			out = append(out, document.NewParagraph(trimmed...))
		}
		inline = nil
	}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			flush()
			out = append(out, r.readBlock(c)...)
			continue
		}
		inline = append(inline, r.readInline(c, nil)...)
	}
	flush()
	if len(out) == 0 {
		out = append(out, document.NewParagraph())
	}
	return out
}

func (r *htmlReader) readCodeBlock(pre *html.Node) *document.Node {
	language := ""
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			for _, class := range strings.Fields(attr(c, "class")) {
				if strings.HasPrefix(class, "language-") {
					language = strings.TrimPrefix(class, "language-")
					break
				}
			}
		}
	}
	text := strings.TrimSuffix(rawText(pre), "\n")
	node := &document.Node{Type: document.TypeCodeBlock, Content: []*document.Node{}}
	if language != "" {
		node.Attrs = map[string]any{"language": language}
	}
	if text != "" {
		node.Content = append(node.Content, document.NewText(text))
	}
	return node
}

// readInline はインライン要素をテキストノード列として読む
func (r *htmlReader) readInline(n *html.Node, marks []document.Mark) []*document.Node {
	switch n.Type {
	case html.TextNode:
		text := whitespaceRun.ReplaceAllString(n.Data, " ")
		if text == "" {
			return nil
		}
		return []*document.Node{document.NewText(text, marks...)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.Br:
		return []*document.Node{{Type: document.TypeHardBreak}}
	case atom.Img:
		attrs := map[string]any{"src": attr(n, "src")}
		if alt := attr(n, "alt"); alt != "" {
			attrs["alt"] = alt
		}
		if title := attr(n, "title"); title != "" {
			attrs["title"] = title
		}
		return []*document.Node{{Type: document.TypeImage, Attrs: attrs}}
	case atom.Strong, atom.B:
		marks = withMark(marks, document.Mark{Type: document.MarkBold})
	case atom.Em, atom.I:
		marks = withMark(marks, document.Mark{Type: document.MarkItalic})
	case atom.S, atom.Del, atom.Strike:
		marks = withMark(marks, document.Mark{Type: document.MarkStrike})
	case atom.Code, atom.Kbd, atom.Samp:
		marks = withMark(marks, document.Mark{Type: document.MarkCode})
	case atom.U, atom.Ins:
		marks = withMark(marks, document.Mark{Type: document.MarkUnderline})
	case atom.A:
		linkAttrs := map[string]any{"href": attr(n, "href")}
		if title := attr(n, "title"); title != "" {
			linkAttrs["title"] = title
		}
		marks = withMark(marks, document.Mark{Type: document.MarkLink, Attrs: linkAttrs})
	case atom.Input:
		return nil
	case atom.Span, atom.Mark, atom.Small, atom.Sub, atom.Sup, atom.Abbr, atom.Cite, atom.Q, atom.Label, atom.Time, atom.Var:
	default:
		if !isBlockElement(n) {
			r.warnUnknown(n.Data)
		}
	}

	var out []*document.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, r.readInline(c, marks)...)
	}
	return out
}

func withMark(marks []document.Mark, m document.Mark) []document.Mark {
	for _, existing := range marks {
		if existing.Type == m.Type {
			return marks
		}
	}
	out := make([]document.Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

// trimInline は前後の空白を取り除き、同じマークを持つ隣接テキストを結合する
func trimInline(nodes []*document.Node) []*document.Node {
	var merged []*document.Node
	for _, n := range nodes {
		if n.IsText() && len(merged) > 0 {
			prev := merged[len(merged)-1]
			if prev.IsText() && sameMarks(prev.Marks, n.Marks) {
				prev.Text += n.Text
				continue
			}
		}
		merged = append(merged, n)
	}

	// 改行の前後の空白を落とす
	for i, n := range merged {
		if n.Type != document.TypeHardBreak {
			continue
		}
		if i > 0 && merged[i-1].IsText() {
			merged[i-1].Text = strings.TrimRight(merged[i-1].Text, " ")
		}
		if i+1 < len(merged) && merged[i+1].IsText() {
			merged[i+1].Text = strings.TrimLeft(merged[i+1].Text, " ")
		}
	}

	out := make([]*document.Node, 0, len(merged))
	for _, n := range merged {
		if n.IsText() && n.Text == "" {
			continue
		}
		out = append(out, n)
	}

	// 両端の空白
	for len(out) > 0 && out[0].IsText() {
		out[0].Text = strings.TrimLeft(out[0].Text, " ")
		if out[0].Text != "" {
			break
		}
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1].IsText() {
		last := out[len(out)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sameMarks(a, b []document.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			return false
		}
		if fmt.Sprint(a[i].Attrs) != fmt.Sprint(b[i].Attrs) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
