package perfmonitor

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/wasya-io/kilonote/app/boundary/memsurface"
	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/perf"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

// steppingClock は呼ばれるたびに step だけ進む時計
func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func testEnv() config.Environment {
	return config.Environment{MemoryProbe: true, GCHint: true}
}

func TestMeasureNow(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(100, 0))
	s := memsurface.New()
	s.AppendParagraph("hello", false)

	m := New(s, clock,
		WithEnvironment(testEnv()),
		WithStopwatch(steppingClock(2*time.Millisecond)),
		WithMemoryProbe(func() (float64, error) { return 42, nil }),
	)

	sample := m.MeasureNow()
	if sample.RenderTimeMs != 2 {
		t.Errorf("Expected render time 2ms, got %v", sample.RenderTimeMs)
	}
	if sample.UpdateTimeMs != 2 {
		t.Errorf("Expected update time 2ms, got %v", sample.UpdateTimeMs)
	}
	if sample.MemoryMB != 42 {
		t.Errorf("Expected memory 42MB, got %v", sample.MemoryMB)
	}
	if sample.DOMNodeCount == 0 {
		t.Errorf("Expected element count, got 0")
	}
	if sample.ContentLength == 0 {
		t.Errorf("Expected content length, got 0")
	}
	if !sample.CapturedAt.Equal(clock.Now()) {
		t.Errorf("Expected capture time %v, got %v", clock.Now(), sample.CapturedAt)
	}
	if s.RefreshCount() != 1 {
		t.Errorf("Expected one view refresh, got %d", s.RefreshCount())
	}
	if len(m.History()) != 1 {
		t.Errorf("Expected one sample in history, got %d", len(m.History()))
	}
}

func TestMeasureNowWithoutMemoryProbe(t *testing.T) {
	probed := false
	m := New(memsurface.New(), scheduler.NewManual(time.Unix(0, 0)),
		WithEnvironment(config.Environment{}),
		WithMemoryProbe(func() (float64, error) {
			probed = true
			return 1, nil
		}),
	)
	sample := m.MeasureNow()
	if probed || sample.MemoryMB != 0 {
		t.Errorf("Memory should not be probed when unavailable")
	}
}

func TestMeasureNowIgnoresProbeError(t *testing.T) {
	m := New(memsurface.New(), scheduler.NewManual(time.Unix(0, 0)),
		WithEnvironment(testEnv()),
		WithMemoryProbe(func() (float64, error) { return 0, errors.New("unsupported") }),
	)
	sample := m.MeasureNow()
	if sample.MemoryMB != 0 {
		t.Errorf("Expected zero memory, got %v", sample.MemoryMB)
	}
	if len(m.History()) != 1 {
		t.Errorf("Probe failure should not drop the sample")
	}
}

func TestMeasureNowKeepsLastSampleOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := core.NewMockLogger(ctrl)
	logger.EXPECT().Log("warn", gomock.Any()).Times(2)

	s := memsurface.New()
	m := New(s, scheduler.NewManual(time.Unix(0, 0)),
		WithEnvironment(config.Environment{}),
		WithLogger(logger),
	)

	first := m.MeasureNow()

	s.FailReads(errors.New("gone"))
	if got := m.MeasureNow(); got != first {
		t.Errorf("Expected last sample on read error, got %+v", got)
	}

	s.FailReads(nil)
	s.PanicOnRead(true)
	if got := m.MeasureNow(); got != first {
		t.Errorf("Expected last sample on panic, got %+v", got)
	}
	if len(m.History()) != 1 {
		t.Errorf("Failed measurements should not be recorded, got %d", len(m.History()))
	}
}

func TestMeasureNowWithoutSurface(t *testing.T) {
	m := New(nil, scheduler.NewManual(time.Unix(0, 0)))
	if got := m.MeasureNow(); got != (perf.Sample{}) {
		t.Errorf("Expected zero sample, got %+v", got)
	}

	s := memsurface.New()
	m = New(s, scheduler.NewManual(time.Unix(0, 0)), WithEnvironment(config.Environment{}))
	first := m.MeasureNow()
	s.Destroy()
	if got := m.MeasureNow(); got != first {
		t.Errorf("Expected last sample after surface destruction")
	}
}

func TestMeasureNowWithoutView(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := surface.NewMockSurface(ctrl)
	s.EXPECT().IsDestroyed().Return(false)
	s.EXPECT().View().Return(nil)
	s.EXPECT().Document().Return(document.Empty(), nil)

	m := New(s, scheduler.NewManual(time.Unix(0, 0)), WithEnvironment(config.Environment{}))
	sample := m.MeasureNow()
	if sample.DOMNodeCount != 0 {
		t.Errorf("Expected zero elements without a view, got %d", sample.DOMNodeCount)
	}
	if len(m.History()) != 1 {
		t.Errorf("Expected sample to be recorded")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	m := New(memsurface.New(), clock, WithHistory(3), WithEnvironment(config.Environment{}))

	var taken []perf.Sample
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		taken = append(taken, m.MeasureNow())
	}

	history := m.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(history))
	}
	for i, s := range history {
		if !s.CapturedAt.Equal(taken[i+2].CapturedAt) {
			t.Errorf("Sample %d: expected %v, got %v", i, taken[i+2].CapturedAt, s.CapturedAt)
		}
	}
}

func TestStartMeasuresPeriodically(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	m := New(memsurface.New(), clock, WithEnvironment(config.Environment{}))
	m.Start(time.Second)
	m.Start(time.Second)

	clock.Advance(3 * time.Second)
	if len(m.History()) != 3 {
		t.Errorf("Expected 3 samples, got %d", len(m.History()))
	}
	if clock.Pending() != 1 {
		t.Errorf("Expected a single timer, got %d", clock.Pending())
	}

	m.Stop()
	clock.Advance(3 * time.Second)
	if len(m.History()) != 3 {
		t.Errorf("Stop should cancel measurements, got %d", len(m.History()))
	}
}

func TestDestroy(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	s := memsurface.New()
	m := New(s, clock, WithEnvironment(config.Environment{}))
	m.Start(time.Second)
	m.Destroy()
	m.Destroy()
	m.Start(time.Second)

	if clock.Pending() != 0 {
		t.Errorf("Destroyed monitor should not keep timers, got %d", clock.Pending())
	}
	m.MeasureNow()
	if len(m.History()) != 0 {
		t.Errorf("Destroyed monitor should not measure")
	}
	if m.ApplyOptimizations() != nil {
		t.Errorf("Destroyed monitor should not optimize")
	}
}

func TestAverage(t *testing.T) {
	m := New(nil, scheduler.NewManual(time.Unix(0, 0)))
	if m.Average() != (perf.Sample{}) {
		t.Errorf("Expected zero average for empty history")
	}
	m.ring.Push(perf.Sample{RenderTimeMs: 10, DOMNodeCount: 4})
	m.ring.Push(perf.Sample{RenderTimeMs: 20, DOMNodeCount: 8})
	avg := m.Average()
	if avg.RenderTimeMs != 15 || avg.DOMNodeCount != 6 {
		t.Errorf("Unexpected average %+v", avg)
	}
}

func kinds(recs []perf.Recommendation) []perf.RecommendationKind {
	out := make([]perf.RecommendationKind, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Kind)
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name    string
		samples []perf.Sample
		want    []perf.RecommendationKind
	}{
		{
			name: "empty history",
			want: []perf.RecommendationKind{},
		},
		{
			name:    "within budget",
			samples: []perf.Sample{{RenderTimeMs: 16, UpdateTimeMs: 100, MemoryMB: 100, DOMNodeCount: 5000, ContentLength: 100000}},
			want:    []perf.RecommendationKind{},
		},
		{
			name:    "every threshold",
			samples: []perf.Sample{{RenderTimeMs: 17, UpdateTimeMs: 101, MemoryMB: 101, DOMNodeCount: 5001, ContentLength: 100001}},
			want: []perf.RecommendationKind{
				perf.KindMemory,
				perf.KindRenderTime,
				perf.KindUpdateTime,
				perf.KindDOMSize,
				perf.KindContentLength,
			},
		},
		{
			name: "degrading trend",
			samples: []perf.Sample{
				{RenderTimeMs: 4}, {RenderTimeMs: 5}, {RenderTimeMs: 5}, {RenderTimeMs: 6}, {RenderTimeMs: 8},
			},
			want: []perf.RecommendationKind{perf.KindDegradingTrend},
		},
		{
			name: "stable trend",
			samples: []perf.Sample{
				{RenderTimeMs: 4}, {RenderTimeMs: 5}, {RenderTimeMs: 5}, {RenderTimeMs: 6}, {RenderTimeMs: 6},
			},
			want: []perf.RecommendationKind{},
		},
		{
			name: "sub-millisecond noise",
			samples: []perf.Sample{
				{RenderTimeMs: 0.01}, {RenderTimeMs: 0.02}, {RenderTimeMs: 0.02}, {RenderTimeMs: 0.03}, {RenderTimeMs: 0.04},
			},
			want: []perf.RecommendationKind{},
		},
		{
			name:    "too few samples for a trend",
			samples: []perf.Sample{{RenderTimeMs: 1}, {RenderTimeMs: 9}},
			want:    []perf.RecommendationKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil, scheduler.NewManual(time.Unix(0, 0)))
			for _, s := range tt.samples {
				m.ring.Push(s)
			}
			got := kinds(m.Analyze())
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestAnalyzeSortsByPriority(t *testing.T) {
	m := New(nil, scheduler.NewManual(time.Unix(0, 0)))
	m.ring.Push(perf.Sample{RenderTimeMs: 30, MemoryMB: 500, ContentLength: 200000})

	recs := m.Analyze()
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Priority < recs[i].Priority {
			t.Errorf("Recommendations not sorted: %v", recs)
		}
	}
	if recs[0].Severity != perf.SeverityError {
		t.Errorf("Expected memory error first, got %+v", recs[0])
	}
}

func TestApplyOptimizations(t *testing.T) {
	s := memsurface.New()
	gcCalls := 0
	m := New(s, scheduler.NewManual(time.Unix(0, 0)), WithEnvironment(testEnv()))
	m.gcHint = func() { gcCalls++ }
	m.ring.Push(perf.Sample{RenderTimeMs: 30, UpdateTimeMs: 300, MemoryMB: 500})

	applied := kinds(m.ApplyOptimizations())
	if len(applied) != 2 || applied[0] != perf.KindMemory || applied[1] != perf.KindRenderTime {
		t.Errorf("Expected memory and render optimizations, got %v", applied)
	}
	if gcCalls != 1 {
		t.Errorf("Expected one GC hint, got %d", gcCalls)
	}
	if s.RefreshCount() != 1 {
		t.Errorf("Expected one view refresh, got %d", s.RefreshCount())
	}
}

func TestApplyOptimizationsRespectsEnvironment(t *testing.T) {
	m := New(memsurface.New(memsurface.WithoutView()), scheduler.NewManual(time.Unix(0, 0)),
		WithEnvironment(config.Environment{}))
	m.gcHint = func() { t.Errorf("GC hint should be disabled") }
	m.ring.Push(perf.Sample{RenderTimeMs: 30, MemoryMB: 500})

	if applied := m.ApplyOptimizations(); len(applied) != 0 {
		t.Errorf("Expected nothing applied, got %v", kinds(applied))
	}
}

func TestApplyOptimizationsContainsPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := core.NewMockLogger(ctrl)
	logger.EXPECT().Log("warn", gomock.Any()).Times(1)
	logger.EXPECT().Log("info", gomock.Any()).Times(1)

	m := New(memsurface.New(), scheduler.NewManual(time.Unix(0, 0)),
		WithEnvironment(testEnv()), WithLogger(logger))
	m.gcHint = func() { panic("boom") }
	m.ring.Push(perf.Sample{RenderTimeMs: 30, MemoryMB: 500})

	applied := kinds(m.ApplyOptimizations())
	if len(applied) != 1 || applied[0] != perf.KindRenderTime {
		t.Errorf("Expected only render optimization, got %v", applied)
	}
}
