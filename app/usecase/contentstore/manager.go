// contentstore パッケージはコンテンツの形式判定・保存形式への包装・各形式間の変換を行います。
// 変換の失敗はパニックやエラーとして外に出さず、空ドキュメントと警告ログに置き換えます。
package contentstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/microcosm-cc/bluemonday"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/fault"
)

// Option は Manager の構築オプション
type Option func(*Manager)

// WithLogger はロガーを指定する
func WithLogger(logger core.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock は保存時刻に使う時計を指定する
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCacheSize はMarkdown変換キャッシュの件数を指定する
func WithCacheSize(size int) Option {
	return func(m *Manager) {
		m.cacheSize = size
	}
}

// Manager はコンテンツの保存形式を管理する
type Manager struct {
	logger    core.Logger
	now       func() time.Time
	cacheSize int
	sanitizer *bluemonday.Policy
	markdown  *markdownRenderer
	exporter  *converter.Converter
}

// New は新しい Manager を作成する
func New(opts ...Option) *Manager {
	m := &Manager{
		logger:    nopLogger{},
		now:       time.Now,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sanitizer = newSanitizer()
	m.markdown = newMarkdownRenderer(m.cacheSize)
	m.exporter = newExporter()
	return m
}

// Serialize はコンテンツを判定した形式タグ付きのエンベロープに包む。形式変換は行わない
func (m *Manager) Serialize(c any) content.StoredContent {
	format := m.Classify(c)
	payload := c
	if doc, ok := c.(*document.Node); ok && doc != nil {
		payload = doc.Clone()
	}
	return content.New(format, payload, m.now())
}

// Deserialize は保存されたコンテンツを構造化ドキュメントに戻す
// エンベロープ・エンベロープのJSON文字列・エンベロープのない旧形式のどれでも受け付け、
// 失敗した場合は空ドキュメントを返す
func (m *Manager) Deserialize(stored any) *document.Node {
	doc, _ := m.DeserializeWithReport(stored)
	return doc
}

// DeserializeWithReport は Deserialize と同じ変換を行い、発生した警告も返す
func (m *Manager) DeserializeWithReport(stored any) (doc *document.Node, warnings []Warning) {
	defer func() {
		if r := recover(); r != nil {
			doc = document.Empty()
			warnings = append(warnings, Warning{
				Kind:    WarningFallback,
				Message: "recovered from panic during conversion",
				Err:     panicError(r),
			})
		}
		for _, w := range warnings {
			m.logger.Log("warn", "deserialize: "+w.String())
		}
	}()

	format, payload, mismatch := m.open(stored)
	if mismatch != nil {
		warnings = append(warnings, *mismatch)
	}

	var err error
	switch format {
	case content.FormatJSON:
		doc, err = toTree(payload)
		if err != nil {
			err = newConversionError(format, StageDecode, err)
		}
	case content.FormatHTML:
		s, _ := asString(payload)
		var ws []Warning
		doc, ws, err = m.fromHTML(s)
		warnings = append(warnings, ws...)
	case content.FormatMarkdown:
		s, _ := asString(payload)
		var ws []Warning
		doc, ws, err = m.fromMarkdown(s)
		warnings = append(warnings, ws...)
	default:
		if stored != nil {
			err = newConversionError(format, StageClassify, ErrUnknownFormat)
		}
	}

	if err != nil || doc == nil {
		if err == nil {
			err = ErrEmptyConversion
		}
		warnings = append(warnings, Warning{Kind: WarningFallback, Message: "using empty document", Err: err})
		return document.Empty(), warnings
	}
	return doc, warnings
}

// open はエンベロープを開いて形式と中身を返す
// タグと中身の判定結果が一致しない場合は UNKNOWN として扱う
func (m *Manager) open(stored any) (content.FormatTag, any, *Warning) {
	var (
		env content.StoredContent
		ok  bool
	)
	switch v := stored.(type) {
	case content.StoredContent:
		env, ok = v, true
	case *content.StoredContent:
		if v != nil {
			env, ok = *v, true
		}
	case map[string]any:
		env, ok = content.FromMap(v)
	default:
		if s, isString := asString(stored); isString && strings.HasPrefix(strings.TrimSpace(s), "{") {
			env, ok = content.Unmarshal([]byte(s))
		}
	}
	if !ok {
		return classify(stored), stored, nil
	}

	actual := classify(env.Payload)
	if actual != env.Format {
		return content.FormatUnknown, nil, &Warning{
			Kind:    WarningFormatMismatch,
			Message: fmt.Sprintf("envelope tagged %q but payload looks like %q", env.Format, actual),
			Err:     ErrFormatMismatch,
		}
	}
	return actual, env.Payload, nil
}

func (m *Manager) fromHTML(src string) (*document.Node, []Warning, error) {
	if strings.TrimSpace(src) == "" {
		return document.Empty(), nil, nil
	}

	var warnings []Warning
	sanitized := m.sanitizer.Sanitize(src)
	if strings.Count(sanitized, "<") < strings.Count(src, "<") {
		warnings = append(warnings, Warning{
			Kind:    WarningSanitized,
			Message: "disallowed markup removed",
			Err:     newConversionError(content.FormatHTML, StageSanitize, ErrMarkupRemoved),
		})
	}

	r := newHTMLReader()
	blocks, err := r.parseHTML(sanitized)
	warnings = append(warnings, r.warnings...)
	if err != nil {
		return nil, warnings, newConversionError(content.FormatHTML, StageParse, err)
	}
	if len(blocks) == 0 {
		return document.Empty(), warnings, nil
	}
	return document.NewDoc(blocks...), warnings, nil
}

func (m *Manager) fromMarkdown(src string) (*document.Node, []Warning, error) {
	if strings.TrimSpace(src) == "" {
		return document.Empty(), nil, nil
	}
	htmlText, err := m.markdown.Render(src)
	if err != nil {
		return nil, nil, newConversionError(content.FormatMarkdown, StageRender, err)
	}
	return m.fromHTML(htmlText)
}

// IsEmpty はコンテンツが空かどうかを判定する
func (m *Manager) IsEmpty(c any) (empty bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Log("warn", fmt.Sprintf("isEmpty: recovered from panic: %v", r))
			empty = false
		}
	}()

	switch v := c.(type) {
	case content.StoredContent:
		return m.IsEmpty(v.Payload)
	case *content.StoredContent:
		if v != nil {
			return m.IsEmpty(v.Payload)
		}
	}

	switch classify(c) {
	case content.FormatJSON:
		doc, err := toTree(c)
		if err != nil {
			return false
		}
		for _, block := range doc.Content {
			if !block.IsEmptyParagraph() {
				return false
			}
		}
		return true
	case content.FormatHTML:
		s, _ := asString(c)
		return isEmptyHTML(s)
	case content.FormatMarkdown:
		s, _ := asString(c)
		return strings.TrimSpace(s) == ""
	default:
		return c == nil
	}
}

var emptyHTMLForms = map[string]bool{
	"":              true,
	"<p></p>":       true,
	"<p><br></p>":   true,
	"<p><br/></p>":  true,
	"<p><br /></p>": true,
}

func isEmptyHTML(s string) bool {
	return emptyHTMLForms[strings.TrimSpace(s)]
}

// CachedMarkdown はキャッシュ済みのMarkdown変換件数を返す
func (m *Manager) CachedMarkdown() int {
	return m.markdown.Cached()
}

func (m *Manager) warn(err error) {
	m.logger.Log("warn", err.Error())
}

func panicError(r any) error {
	return fault.FromPanic(fault.CategoryConversion, r)
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
