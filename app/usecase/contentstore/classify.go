package contentstore

import (
	"encoding/json"
	"strings"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/document"
)

// Classify はコンテンツの形式を判定する
// 判定順: 構造化ツリーの形 → JSON文字列として解釈できるツリー → "<" で始まり ">" を含む文字列 → Markdown
// どんな入力でもパニックしない
func (m *Manager) Classify(c any) (tag content.FormatTag) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Log("warn", "classify: recovered from panic")
			tag = content.FormatUnknown
		}
	}()
	return classify(c)
}

func classify(c any) content.FormatTag {
	switch v := c.(type) {
	case nil:
		return content.FormatUnknown
	case *document.Node:
		if document.Validate(v) {
			return content.FormatJSON
		}
		return content.FormatUnknown
	case document.Node:
		if document.Validate(&v) {
			return content.FormatJSON
		}
		return content.FormatUnknown
	case map[string]any:
		if isTreeMap(v) {
			return content.FormatJSON
		}
		return content.FormatUnknown
	case string:
		return classifyString(v)
	case []byte:
		return classifyString(string(v))
	case json.RawMessage:
		return classifyString(string(v))
	default:
		return content.FormatUnknown
	}
}

func classifyString(s string) content.FormatTag {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		var m map[string]any
		if err := json.Unmarshal([]byte(trimmed), &m); err == nil && isTreeMap(m) {
			return content.FormatJSON
		}
	}
	if strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">") {
		return content.FormatHTML
	}
	return content.FormatMarkdown
}

// isTreeMap は type が文字列、content が配列の map かどうかを判定する
func isTreeMap(m map[string]any) bool {
	if m == nil {
		return false
	}
	if _, ok := m["type"].(string); !ok {
		return false
	}
	switch m["content"].(type) {
	case []any, []map[string]any:
		return true
	}
	return false
}

// toTree は JSON と判定されたコンテンツを構造化ドキュメントに変換する
func toTree(c any) (*document.Node, error) {
	var (
		doc *document.Node
		err error
	)
	switch v := c.(type) {
	case *document.Node:
		doc = v.Clone()
	case document.Node:
		doc = v.Clone()
	case map[string]any:
		doc, err = document.FromMap(v)
	case string:
		doc, err = document.Decode([]byte(strings.TrimSpace(v)))
	case []byte:
		doc, err = document.Decode(v)
	case json.RawMessage:
		doc, err = document.Decode(v)
	default:
		return nil, ErrInvalidTree
	}
	if err != nil {
		return nil, err
	}
	if !document.Validate(doc) {
		return nil, ErrInvalidTree
	}
	prune(doc)
	return doc, nil
}

// prune は nil の子と type のない子を取り除く
func prune(n *document.Node) {
	if n.Content == nil {
		return
	}
	kept := n.Content[:0]
	for _, child := range n.Content {
		if child == nil || child.Type == "" {
			continue
		}
		prune(child)
		kept = append(kept, child)
	}
	n.Content = kept
}

// asString は文字列として扱えるコンテンツを取り出す
func asString(c any) (string, bool) {
	switch v := c.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	}
	return "", false
}
