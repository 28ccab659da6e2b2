// perf パッケージはパフォーマンス計測のサンプルと推奨事項を定義します。
package perf

import "time"

// Sample は1回の計測結果
type Sample struct {
	RenderTimeMs  float64   `json:"renderTimeMs"`
	UpdateTimeMs  float64   `json:"updateTimeMs"`
	MemoryMB      float64   `json:"memoryMb"`
	DOMNodeCount  int       `json:"domNodeCount"`
	ContentLength int       `json:"contentLength"`
	CapturedAt    time.Time `json:"capturedAtTimestamp"`
}

// Severity は推奨事項の重大度
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// RecommendationKind は推奨事項の種類。最適化処理の分岐キーになる
type RecommendationKind int

const (
	KindRenderTime RecommendationKind = iota + 1
	KindUpdateTime
	KindMemory
	KindDOMSize
	KindContentLength
	KindDegradingTrend
)

func (k RecommendationKind) String() string {
	switch k {
	case KindRenderTime:
		return "render_time"
	case KindUpdateTime:
		return "update_time"
	case KindMemory:
		return "memory"
	case KindDOMSize:
		return "dom_size"
	case KindContentLength:
		return "content_length"
	case KindDegradingTrend:
		return "degrading_trend"
	default:
		return "unknown"
	}
}

// Recommendation は閾値や傾向から導かれた推奨事項
type Recommendation struct {
	Kind            RecommendationKind
	Severity        Severity
	Message         string
	SuggestedAction string
	Priority        int // 1〜5、大きいほど優先
}
