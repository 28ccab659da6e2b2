package perfmonitor

import (
	"fmt"
	"sort"

	"github.com/wasya-io/kilonote/app/entity/perf"
)

// 閾値
const (
	RenderTimeThresholdMs   = 16.0
	UpdateTimeThresholdMs   = 100.0
	MemoryThresholdMB       = 100.0
	DOMNodeThreshold        = 5000
	ContentLengthThreshold  = 100000
	TrendWindow             = 5
	DegradingTrendRatio     = 0.5
	TrendMinRenderMs        = RenderTimeThresholdMs / 4
	OptimizationMinPriority = 4
)

// Analyze は最新のサンプルと直近の傾向から推奨事項を優先度の高い順に返す
func (m *Monitor) Analyze() []perf.Recommendation {
	m.mu.Lock()
	current, ok := m.ring.Latest()
	recent := m.ring.Last(TrendWindow)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	var recs []perf.Recommendation
	if current.RenderTimeMs > RenderTimeThresholdMs {
		recs = append(recs, perf.Recommendation{
			Kind:            perf.KindRenderTime,
			Severity:        perf.SeverityWarning,
			Message:         fmt.Sprintf("render took %.1fms (budget %.0fms)", current.RenderTimeMs, RenderTimeThresholdMs),
			SuggestedAction: "refresh the editor view",
			Priority:        4,
		})
	}
	if current.UpdateTimeMs > UpdateTimeThresholdMs {
		recs = append(recs, perf.Recommendation{
			Kind:            perf.KindUpdateTime,
			Severity:        perf.SeverityWarning,
			Message:         fmt.Sprintf("content update took %.1fms", current.UpdateTimeMs),
			SuggestedAction: "split large edits into smaller transactions",
			Priority:        3,
		})
	}
	if current.MemoryMB > MemoryThresholdMB {
		recs = append(recs, perf.Recommendation{
			Kind:            perf.KindMemory,
			Severity:        perf.SeverityError,
			Message:         fmt.Sprintf("memory usage is %.1fMB", current.MemoryMB),
			SuggestedAction: "release unused memory",
			Priority:        5,
		})
	}
	if current.DOMNodeCount > DOMNodeThreshold {
		recs = append(recs, perf.Recommendation{
			Kind:            perf.KindDOMSize,
			Severity:        perf.SeverityWarning,
			Message:         fmt.Sprintf("editor renders %d elements", current.DOMNodeCount),
			SuggestedAction: "collapse or paginate long documents",
			Priority:        3,
		})
	}
	if current.ContentLength > ContentLengthThreshold {
		recs = append(recs, perf.Recommendation{
			Kind:            perf.KindContentLength,
			Severity:        perf.SeverityInfo,
			Message:         fmt.Sprintf("document is %d characters long", current.ContentLength),
			SuggestedAction: "split the note into several documents",
			Priority:        2,
		})
	}

	if len(recent) >= TrendWindow {
		first := recent[0].RenderTimeMs
		last := recent[len(recent)-1].RenderTimeMs
		// 描画時間が小さいうちの揺らぎは傾向として扱わない
		if first > 0 && last >= TrendMinRenderMs && (last-first)/first > DegradingTrendRatio {
			recs = append(recs, perf.Recommendation{
				Kind:            perf.KindDegradingTrend,
				Severity:        perf.SeverityWarning,
				Message:         fmt.Sprintf("render time grew from %.1fms to %.1fms", first, last),
				SuggestedAction: "refresh the editor view",
				Priority:        4,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})
	return recs
}

// ApplyOptimizations は優先度が高い推奨事項に対応する処理を実行し、適用したものを返す
func (m *Monitor) ApplyOptimizations() []perf.Recommendation {
	m.mu.Lock()
	s := m.surface
	destroyed := m.destroyed
	m.mu.Unlock()
	if destroyed || s == nil || s.IsDestroyed() {
		return nil
	}

	var applied []perf.Recommendation
	for _, rec := range m.Analyze() {
		if rec.Priority < OptimizationMinPriority {
			continue
		}
		if m.apply(rec.Kind) {
			m.logger.Log("info", fmt.Sprintf("perf: applied %s optimization", rec.Kind))
			applied = append(applied, rec)
		}
	}
	return applied
}

// apply は推奨事項の種類ごとの最適化を実行する
func (m *Monitor) apply(kind perf.RecommendationKind) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Log("warn", fmt.Sprintf("perf: %s optimization failed: %v", kind, r))
			ok = false
		}
	}()

	switch kind {
	case perf.KindMemory:
		if !m.env.GCHint {
			return false
		}
		m.gcHint()
		return true
	case perf.KindRenderTime, perf.KindDegradingTrend:
		m.mu.Lock()
		s := m.surface
		m.mu.Unlock()
		if s == nil {
			return false
		}
		view := s.View()
		if view == nil {
			return false
		}
		view.RefreshState()
		return true
	default:
		return false
	}
}
