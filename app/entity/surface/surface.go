// surface パッケージは外部のリッチテキスト編集エンジンが提供する編集面の能力を定義します。
// 省略可能なメンバーは nil を返すことで「存在しない」ことを表し、利用側は必ず nil チェックを行います。
package surface

//go:generate mockgen -source=surface.go -destination=mock_surface.go -package=surface

import (
	"errors"

	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
)

// エラー定義
var (
	ErrDestroyed    = errors.New("surface is destroyed")
	ErrNoCommands   = errors.New("surface has no command interface")
	ErrInvalidRange = errors.New("range is outside the document")
)

// Rect は描画面上の矩形(ピクセル単位、スクロール領域の先頭が原点)
type Rect struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Element は描画面のルート要素(DOM要素に相当)
type Element interface {
	// IsConnected は要素が生きているドキュメントツリーに接続されているかを返す
	IsConnected() bool
	// DescendantCount は子孫要素の数を返す
	DescendantCount() int
	ScrollTop() int
	ScrollHeight() int
	ClientHeight() int
	// ScrollTo は指定位置へスクロールする。smooth が true ならアニメーションする
	ScrollTo(top int, smooth bool)
}

// View は描画面
type View interface {
	// Root はルート要素を返す。存在しなければ nil
	Root() Element
	// RefreshState は内部状態を描画面に再適用する
	RefreshState()
	// CaretRect はドキュメント位置 pos のキャレット矩形を返す
	CaretRect(pos int) (Rect, bool)
}

// State は編集エンジンの内部状態のうち参照可能な部分
type State struct {
	Selection document.Range
	Version   uint64
}

// Commands は編集コマンドのインターフェース
// 編集面の状態を変更するときは必ずこのインターフェースを経由する
type Commands interface {
	Focus() error
	Blur() error
	SetSelection(r document.Range) error
	SetContent(doc *document.Node) error
	DeleteRange(r document.Range) error
}

// Surface は編集面のハンドル
type Surface interface {
	IsDestroyed() bool
	// Document は現在のドキュメントを返す。通常の運用ではエラーにならず、生存確認にも使われる
	Document() (*document.Node, error)
	// View は描画面を返す。存在しなければ nil
	View() View
	// State は内部状態を返す。存在しなければ nil
	State() *State
	// Commands はコマンドインターフェースを返す。存在しなければ nil
	Commands() Commands
	// On はイベントを購読し、解除用の関数を返す
	On(eventType event.EventType, fn func(event.Event)) func()
}

// Alive はハンドルが存在し、破棄されていないかを返す
func Alive(s Surface) bool {
	return s != nil && !s.IsDestroyed()
}
