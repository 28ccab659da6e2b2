// fault パッケージはパイプライン全体で共有するエラー表現を定義します。
package fault

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Category はエラーの種類を表す
type Category int

const (
	// CategoryUnknown は未分類のエラー
	CategoryUnknown Category = iota
	// CategoryConversion はフォーマット変換のエラー
	CategoryConversion
	// CategorySurface は編集面へのアクセスのエラー
	CategorySurface
	// CategoryRecovery は自動復旧処理のエラー
	CategoryRecovery
	// CategoryMeasurement は性能計測のエラー
	CategoryMeasurement
	// CategoryRender は描画のエラー
	CategoryRender
)

func (c Category) String() string {
	switch c {
	case CategoryConversion:
		return "conversion"
	case CategorySurface:
		return "surface"
	case CategoryRecovery:
		return "recovery"
	case CategoryMeasurement:
		return "measurement"
	case CategoryRender:
		return "render"
	default:
		return "unknown"
	}
}

// StructuredError は詳細な情報を持つエラー
type StructuredError struct {
	Category Category
	Message  string
	Context  map[string]any
	inner    error
}

func (e *StructuredError) Error() string {
	if e.inner == nil {
		return fmt.Sprintf("[%v] %s", e.Category, e.Message)
	}
	return fmt.Sprintf("[%v] %s: %v", e.Category, e.Message, e.inner)
}

// Unwrap は内部のエラーを返す
func (e *StructuredError) Unwrap() error {
	return e.inner
}

// New は新しいStructuredErrorを作成する
func New(category Category, message string, inner error) *StructuredError {
	return &StructuredError{
		Category: category,
		Message:  message,
		Context:  make(map[string]any),
		inner:    inner,
	}
}

// WithContext はコンテキスト情報を追加する
func (e *StructuredError) WithContext(key string, value any) *StructuredError {
	e.Context[key] = value
	return e
}

// FromPanic は recover() で得た値をエラーに変換する
func FromPanic(category Category, recovered any) *StructuredError {
	if err, ok := recovered.(error); ok {
		return New(category, "panic", err)
	}
	return New(category, fmt.Sprintf("panic: %v", recovered), nil)
}

// Report は外部へ送信するエラーレポート
type Report struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Category   string         `json:"category"`
	Message    string         `json:"message"`
	StackTrace string         `json:"stackTrace,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// NewReport は新しいReportを作成する
// スタックトレースが空の場合は呼び出し元のスタックを記録する
func NewReport(err error, stack string, at time.Time) Report {
	category := CategoryUnknown
	var ctx map[string]any
	if structured, ok := err.(*StructuredError); ok {
		category = structured.Category
		if len(structured.Context) > 0 {
			ctx = structured.Context
		}
	}
	if stack == "" {
		stack = string(debug.Stack())
	}
	message := ""
	if err != nil {
		message = err.Error()
	}
	return Report{
		ID:         uuid.NewString(),
		Timestamp:  at,
		Category:   category.String(),
		Message:    message,
		StackTrace: stack,
		Context:    ctx,
	}
}
