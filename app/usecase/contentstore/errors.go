package contentstore

import (
	"errors"
	"fmt"

	"github.com/wasya-io/kilonote/app/entity/content"
)

// エラー定義
var (
	ErrInvalidTree     = errors.New("payload is not a valid document tree")
	ErrFormatMismatch  = errors.New("envelope format tag does not match payload")
	ErrUnknownFormat   = errors.New("content format is unknown")
	ErrEmptyConversion = errors.New("conversion produced no content")
	ErrMarkupRemoved   = errors.New("disallowed markup removed")
)

// Stage は変換処理の段階
type Stage string

const (
	StageClassify Stage = "classify"
	StageDecode   Stage = "decode"
	StageSanitize Stage = "sanitize"
	StageParse    Stage = "parse"
	StageRender   Stage = "render"
	StageExport   Stage = "export"
)

// ConversionError は変換の失敗を形式と段階つきで表す
type ConversionError struct {
	Format content.FormatTag
	Stage  Stage
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion failed at %s: %v", e.Format, e.Stage, e.Err)
}

// Unwrap は内部のエラーを返す
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func newConversionError(format content.FormatTag, stage Stage, err error) *ConversionError {
	return &ConversionError{Format: format, Stage: stage, Err: err}
}

// WarningKind は変換時の警告の種類
type WarningKind int

const (
	// WarningFallback は空ドキュメントへのフォールバック
	WarningFallback WarningKind = iota
	// WarningUnknownElement は対応していない要素を読み飛ばした
	WarningUnknownElement
	// WarningSanitized はサニタイズでマークアップが除去された
	WarningSanitized
	// WarningFormatMismatch はエンベロープのタグと内容が一致しない
	WarningFormatMismatch
)

func (k WarningKind) String() string {
	switch k {
	case WarningFallback:
		return "fallback"
	case WarningUnknownElement:
		return "unknown-element"
	case WarningSanitized:
		return "sanitized"
	case WarningFormatMismatch:
		return "format-mismatch"
	default:
		return "unknown"
	}
}

// Warning は変換時の警告
type Warning struct {
	Kind    WarningKind
	Message string
	Err     error
}

func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Kind, w.Message, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
