package errorboundary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/wasya-io/kilonote/app/boundary/reporter"
	"github.com/wasya-io/kilonote/app/config"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/fault"
)

var production = config.Environment{}

func TestRenderNormal(t *testing.T) {
	rendered := 0
	b := New(func(context.Context) error {
		rendered++
		return nil
	}, WithEnvironment(production))

	if err := b.Render(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rendered != 1 || b.State() != StateNormal || b.Fault() != nil {
		t.Errorf("Expected normal render, got state %s", b.State())
	}
}

func TestRenderCapturesError(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	renderErr := errors.New("view exploded")

	var captured *Fault
	var fallbackFault *Fault
	b := New(func(context.Context) error { return renderErr },
		WithEnvironment(production),
		WithClock(func() time.Time { return at }),
		WithOnError(func(f *Fault) { captured = f }),
		WithFallback(func(_ context.Context, f *Fault, _ *Boundary) error {
			fallbackFault = f
			return nil
		}),
	)

	ctx := WithRenderContext(context.Background(), map[string]any{"component": "editor"})
	if err := b.Render(ctx); err != nil {
		t.Fatalf("Render errors should be contained, got %v", err)
	}
	if b.State() != StateFaulted {
		t.Fatalf("Expected faulted state, got %s", b.State())
	}

	f := b.Fault()
	if f == nil || f.ID == "" {
		t.Fatalf("Expected fault with ID, got %+v", f)
	}
	if !errors.Is(f.Err, renderErr) {
		t.Errorf("Expected wrapped render error, got %v", f.Err)
	}
	if f.Stack == "" {
		t.Errorf("Expected stack trace")
	}
	if f.RenderContext["component"] != "editor" {
		t.Errorf("Expected render context, got %v", f.RenderContext)
	}
	if !f.At.Equal(at) {
		t.Errorf("Expected fault time %v, got %v", at, f.At)
	}
	if captured != f || fallbackFault != f {
		t.Errorf("Callback and fallback should receive the captured fault")
	}
}

func TestRenderCapturesPanic(t *testing.T) {
	b := New(func(context.Context) error { panic("nil view") }, WithEnvironment(production))

	if err := b.Render(context.Background()); err != nil {
		t.Fatalf("Panic should be contained, got %v", err)
	}
	f := b.Fault()
	if f == nil {
		t.Fatalf("Expected fault")
	}
	if !strings.Contains(f.Err.Error(), "nil view") {
		t.Errorf("Expected panic value in error, got %v", f.Err)
	}
	var structured *fault.StructuredError
	if !errors.As(f.Err, &structured) || structured.Category != fault.CategoryRender {
		t.Errorf("Expected render category, got %v", f.Err)
	}
	if !strings.Contains(f.Stack, "goroutine") {
		t.Errorf("Expected goroutine stack, got %q", f.Stack)
	}
}

func TestFaultedStaysFaulted(t *testing.T) {
	calls := 0
	fallbacks := 0
	b := New(func(context.Context) error {
		calls++
		return errors.New("broken")
	}, WithEnvironment(production), WithFallback(func(context.Context, *Fault, *Boundary) error {
		fallbacks++
		return nil
	}))

	b.Render(context.Background())
	b.Render(context.Background())
	b.Render(context.Background())
	if calls != 1 {
		t.Errorf("Children should not be rendered while faulted, got %d calls", calls)
	}
	if fallbacks != 3 {
		t.Errorf("Expected fallback on every render, got %d", fallbacks)
	}
}

func TestRetry(t *testing.T) {
	fail := true
	b := New(func(context.Context) error {
		if fail {
			return errors.New("transient")
		}
		return nil
	}, WithEnvironment(production))

	b.Render(context.Background())
	first := b.Fault()

	b.Retry(context.Background())
	if b.State() != StateFaulted || b.Fault() == first {
		t.Errorf("Failed retry should capture a new fault")
	}

	fail = false
	if err := b.Retry(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.State() != StateNormal || b.Fault() != nil {
		t.Errorf("Expected recovery after retry, got %s", b.State())
	}
}

func TestFallbackCanRetry(t *testing.T) {
	attempts := 0
	b := New(func(context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("first render fails")
		}
		return nil
	}, WithEnvironment(production), WithFallback(func(ctx context.Context, _ *Fault, b *Boundary) error {
		return b.Retry(ctx)
	}))

	if err := b.Render(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.State() != StateNormal || attempts != 2 {
		t.Errorf("Expected retry from fallback, got %s after %d attempts", b.State(), attempts)
	}
}

func TestFallbackPanicIsNotMasked(t *testing.T) {
	b := New(func(context.Context) error { return errors.New("broken") },
		WithEnvironment(production),
		WithFallback(func(context.Context, *Fault, *Boundary) error { panic("fallback broken") }),
	)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected fallback panic to propagate")
		}
	}()
	b.Render(context.Background())
}

func TestReportingDependsOnEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  config.Environment
		want int
	}{
		{name: "production", env: production, want: 1},
		{name: "development", env: config.Environment{Development: true}, want: 0},
		{name: "interactive", env: config.Environment{Interactive: true}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := &reporter.Memory{}
			b := New(func(context.Context) error { return errors.New("broken") },
				WithEnvironment(tt.env),
				WithReporter(mem),
			)
			ctx := WithRenderContext(context.Background(), map[string]any{"note": "n1"})
			b.Render(ctx)

			reports := mem.Reports()
			if len(reports) != tt.want {
				t.Fatalf("Expected %d reports, got %d", tt.want, len(reports))
			}
			if tt.want == 0 {
				return
			}
			if reports[0].ID != b.Fault().ID {
				t.Errorf("Report ID should match fault ID")
			}
			if reports[0].Category != "render" || reports[0].Context["note"] != "n1" {
				t.Errorf("Unexpected report %+v", reports[0])
			}
		})
	}
}

type failingReporter struct{}

func (failingReporter) Report(fault.Report) error { return errors.New("offline") }

func TestReporterFailureIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := core.NewMockLogger(ctrl)
	logger.EXPECT().Log("error", gomock.Any()).Times(1)
	logger.EXPECT().Log("warn", gomock.Any()).Times(1)

	b := New(func(context.Context) error { return errors.New("broken") },
		WithEnvironment(production),
		WithReporter(failingReporter{}),
		WithLogger(logger),
	)
	if err := b.Render(context.Background()); err != nil {
		t.Errorf("Reporter failure should not escape, got %v", err)
	}
}

func TestReload(t *testing.T) {
	b := New(nil, WithEnvironment(production))
	if err := b.Reload(); !errors.Is(err, ErrNoReload) {
		t.Errorf("Expected ErrNoReload, got %v", err)
	}

	reloaded := false
	b = New(nil, WithEnvironment(production), WithReload(func() { reloaded = true }))
	if err := b.Reload(); err != nil || !reloaded {
		t.Errorf("Expected reload hook to run, got %v", err)
	}
}

func TestRenderContextIsCopied(t *testing.T) {
	ctx := WithRenderContext(context.Background(), map[string]any{"a": 1})
	ctx = WithRenderContext(ctx, map[string]any{"b": 2})

	values := RenderContext(ctx)
	if values["a"] != 1 || values["b"] != 2 {
		t.Errorf("Expected merged values, got %v", values)
	}
	values["a"] = 99
	if RenderContext(ctx)["a"] != 1 {
		t.Errorf("RenderContext should return a copy")
	}
	if RenderContext(context.Background()) != nil {
		t.Errorf("Expected nil for plain context")
	}
}
