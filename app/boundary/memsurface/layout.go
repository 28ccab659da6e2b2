package memsurface

import (
	"golang.org/x/text/width"

	"github.com/wasya-io/kilonote/app/entity/document"
)

// LineHeight は1行の高さ(px)
const LineHeight = 20

// getCharWidth は文字の表示幅を返す
func getCharWidth(ch rune) int {
	p := width.LookupRune(ch)
	switch p.Kind() {
	case width.EastAsianFullwidth, width.EastAsianWide:
		return 2
	default:
		return 1
	}
}

// blockLines はブロックを cols 幅で折り返したときの行数と、
// ブロック内オフセットごとの行番号を返す
func blockLines(block *document.Node, cols int) (int, []int) {
	if cols < 1 {
		cols = 1
	}
	text := []rune(block.TextContent())
	lineOf := make([]int, len(text)+1)
	line, col := 0, 0
	for i, ch := range text {
		lineOf[i] = line
		w := getCharWidth(ch)
		if col+w > cols {
			line++
			col = 0
			lineOf[i] = line
		}
		col += w
	}
	lineOf[len(text)] = line
	return line + 1, lineOf
}

// layout は各トップレベルブロックの開始行と総行数を計算する
func layout(doc *document.Node, cols int) ([]int, int) {
	starts := make([]int, 0, len(doc.Content))
	total := 0
	for _, block := range doc.Content {
		starts = append(starts, total)
		n, _ := blockLines(block, cols)
		total += n
	}
	return starts, total
}

// caretLine は位置 pos のキャレットが何行目にあるかを返す
func caretLine(doc *document.Node, cols, pos int) (int, bool) {
	ranges := document.TopLevelRanges(doc)
	if len(ranges) == 0 {
		return 0, false
	}
	starts, _ := layout(doc, cols)
	idx := document.BlockIndexAt(doc, pos)
	if idx < 0 {
		return 0, false
	}
	_, lineOf := blockLines(doc.Content[idx], cols)
	// ブロックの開始トークン分を除いた文字オフセット
	offset := pos - ranges[idx].From - 1
	if offset < 0 {
		offset = 0
	}
	if offset >= len(lineOf) {
		offset = len(lineOf) - 1
	}
	return starts[idx] + lineOf[offset], true
}
