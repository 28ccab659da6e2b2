package document

import "unicode/utf8"

// Range はドキュメント内の文字位置の範囲を表す
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Valid は範囲が size の内側に収まっているかを返す
func (r Range) Valid(size int) bool {
	return r.From >= 0 && r.To >= r.From && r.To <= size
}

// Empty は長さ0の範囲かどうかを返す
func (r Range) Empty() bool {
	return r.From == r.To
}

// NodeSize はノードが占める位置の数を返す
// テキストは文字数、葉ノードは1、それ以外は開始・終了トークンの2と子の合計
func NodeSize(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	size := 2
	for _, child := range n.Content {
		size += NodeSize(child)
	}
	return size
}

// ContentSize はドキュメント直下の内容が占める位置の数を返す
func ContentSize(doc *Node) int {
	if doc == nil {
		return 0
	}
	size := 0
	for _, child := range doc.Content {
		size += NodeSize(child)
	}
	return size
}

// TopLevelRanges はドキュメント直下の各ノードが占める範囲を返す
func TopLevelRanges(doc *Node) []Range {
	if doc == nil {
		return nil
	}
	ranges := make([]Range, 0, len(doc.Content))
	pos := 0
	for _, child := range doc.Content {
		size := NodeSize(child)
		ranges = append(ranges, Range{From: pos, To: pos + size})
		pos += size
	}
	return ranges
}

// BlockIndexAt は位置 pos を含むトップレベルノードのインデックスを返す
func BlockIndexAt(doc *Node, pos int) int {
	ranges := TopLevelRanges(doc)
	for i, r := range ranges {
		if pos >= r.From && pos <= r.To {
			return i
		}
	}
	if len(ranges) == 0 {
		return -1
	}
	return len(ranges) - 1
}
