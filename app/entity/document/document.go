// document パッケージはエディタ内部の正準表現である構造化ドキュメントツリーを定義します。
package document

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ノードタイプ
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeTaskList       = "taskList"
	TypeTaskItem       = "taskItem"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeHorizontalRule = "horizontalRule"
	TypeHardBreak      = "hardBreak"
	TypeImage          = "image"
	TypeText           = "text"
)

// マークタイプ
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkUnderline = "underline"
	MarkLink      = "link"
)

// Mark はテキストノードに付与される装飾を表す
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node は構造化ドキュメントの1ノードを表す
// Content が nil の場合は子を持たないノード、空スライスの場合は子が空のノードとして区別する
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// wireNode はJSON出力用の形
type wireNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content *[]*Node       `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    *string        `json:"text,omitempty"`
}

// MarshalJSON は空の content 配列を保持したままJSONに変換する
func (n *Node) MarshalJSON() ([]byte, error) {
	w := wireNode{
		Type:  n.Type,
		Attrs: n.Attrs,
		Marks: n.Marks,
	}
	if n.Content != nil {
		w.Content = &n.Content
	}
	if n.Type == TypeText {
		text := n.Text
		w.Text = &text
	}
	return json.Marshal(w)
}

// NewDoc は指定された子ノードを持つドキュメントを作成する
func NewDoc(children ...*Node) *Node {
	return &Node{Type: TypeDoc, Content: append([]*Node{}, children...)}
}

// NewParagraph は段落ノードを作成する
func NewParagraph(children ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: append([]*Node{}, children...)}
}

// NewHeading は見出しノードを作成する
func NewHeading(level int, children ...*Node) *Node {
	return &Node{
		Type:    TypeHeading,
		Attrs:   map[string]any{"level": level},
		Content: append([]*Node{}, children...),
	}
}

// NewText はテキストノードを作成する
func NewText(text string, marks ...Mark) *Node {
	n := &Node{Type: TypeText, Text: text}
	if len(marks) > 0 {
		n.Marks = append([]Mark{}, marks...)
	}
	return n
}

// Empty は正準の空ドキュメント {type:"doc", content:[{type:"paragraph", content:[]}]} を返す
func Empty() *Node {
	return NewDoc(NewParagraph())
}

// IsText はテキストノードかどうかを返す
func (n *Node) IsText() bool {
	return n != nil && n.Type == TypeText
}

// IsLeaf は子を持たないノードかどうかを返す
func (n *Node) IsLeaf() bool {
	if n == nil {
		return true
	}
	switch n.Type {
	case TypeText, TypeHardBreak, TypeImage, TypeHorizontalRule:
		return true
	}
	return false
}

// IsEmptyParagraph は内容を持たない段落かどうかを返す
func (n *Node) IsEmptyParagraph() bool {
	if n == nil || n.Type != TypeParagraph {
		return false
	}
	for _, child := range n.Content {
		if child == nil {
			continue
		}
		if child.IsText() && child.Text == "" {
			continue
		}
		return false
	}
	return true
}

// HasMark は指定タイプのマークを持つかどうかを返す
func (n *Node) HasMark(markType string) bool {
	if n == nil {
		return false
	}
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// AttrInt は数値属性を int として取得する
// JSON経由の float64 と直接構築した int の両方を扱う
func (n *Node) AttrInt(key string, fallback int) int {
	if n == nil || n.Attrs == nil {
		return fallback
	}
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return fallback
}

// AttrString は文字列属性を取得する
func (n *Node) AttrString(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	if s, ok := n.Attrs[key].(string); ok {
		return s
	}
	return ""
}

// AttrBool は真偽値属性を取得する
func (n *Node) AttrBool(key string) bool {
	if n == nil || n.Attrs == nil {
		return false
	}
	switch v := n.Attrs[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// TextContent はノード配下のテキストを連結して返す
func (n *Node) TextContent() string {
	var sb strings.Builder
	Walk(n, func(node *Node) bool {
		if node.IsText() {
			sb.WriteString(node.Text)
		}
		return true
	})
	return sb.String()
}

// Walk はノードを深さ優先で走査する。fn が false を返すと子の走査をスキップする
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Content {
		Walk(child, fn)
	}
}

// Clone はノードのディープコピーを返す
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type: n.Type,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = cloneAttrs(n.Attrs)
	}
	if n.Marks != nil {
		c.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = Mark{Type: m.Type}
			if m.Attrs != nil {
				c.Marks[i].Attrs = cloneAttrs(m.Attrs)
			}
		}
	}
	if n.Content != nil {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = child.Clone()
		}
	}
	return c
}

func cloneAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// Equal は2つのドキュメントが構造的に等しいかを判定する
// 数値属性の型差(int/float64)を吸収するため正規化したJSONで比較する
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Validate はドキュメントとして最低限の形(type 文字列と content 配列)を満たすか判定する
func Validate(n *Node) bool {
	return n != nil && n.Type != "" && n.Content != nil
}

// Decode はJSON文字列を構造化ドキュメントに変換する
func Decode(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// FromMap はJSONデコード済みの map をノードに変換する
func FromMap(m map[string]any) (*Node, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Encode はドキュメントをJSON文字列に変換する
func Encode(n *Node) (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
