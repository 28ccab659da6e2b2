package healthmonitor

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/wasya-io/kilonote/app/boundary/memsurface"
	"github.com/wasya-io/kilonote/app/boundary/scheduler"
	"github.com/wasya-io/kilonote/app/entity/core"
	"github.com/wasya-io/kilonote/app/entity/document"
	"github.com/wasya-io/kilonote/app/entity/event"
	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name        string
		setup       func() surface.Surface
		want        health.State
		issue       health.IssueKind
		recoverable bool
	}{
		{
			name:        "nil surface",
			setup:       func() surface.Surface { return nil },
			want:        health.Error,
			issue:       health.IssueSurfaceMissing,
			recoverable: true,
		},
		{
			name: "destroyed surface",
			setup: func() surface.Surface {
				s := memsurface.New()
				s.Destroy()
				return s
			},
			want:        health.Destroyed,
			issue:       health.IssueSurfaceDestroyed,
			recoverable: false,
		},
		{
			name:        "missing view",
			setup:       func() surface.Surface { return memsurface.New(memsurface.WithoutView()) },
			want:        health.Error,
			issue:       health.IssueViewMissing,
			recoverable: true,
		},
		{
			name: "detached view",
			setup: func() surface.Surface {
				s := memsurface.New()
				s.Detach()
				return s
			},
			want:        health.Warning,
			issue:       health.IssueViewDetached,
			recoverable: true,
		},
		{
			name:        "missing state",
			setup:       func() surface.Surface { return memsurface.New(memsurface.WithoutState()) },
			want:        health.Error,
			issue:       health.IssueStateMissing,
			recoverable: true,
		},
		{
			name:        "missing commands",
			setup:       func() surface.Surface { return memsurface.New(memsurface.WithoutCommands()) },
			want:        health.Warning,
			issue:       health.IssueCommandsMissing,
			recoverable: true,
		},
		{
			name: "unreadable content",
			setup: func() surface.Surface {
				s := memsurface.New()
				s.PanicOnRead(true)
				return s
			},
			want:        health.Error,
			issue:       health.IssueDocumentUnreadable,
			recoverable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := CheckHealth(tt.setup())
			if record.State != tt.want {
				t.Errorf("Expected state %s, got %s", tt.want, record.State)
			}
			if !record.Has(tt.issue) {
				t.Errorf("Expected issue %s, got %v", tt.issue, record.Issues)
			}
			if record.Recoverable != tt.recoverable {
				t.Errorf("Expected recoverable=%v", tt.recoverable)
			}
		})
	}
}

func TestCheckHealthHealthy(t *testing.T) {
	record := CheckHealth(memsurface.New())
	if record.State != health.Healthy || len(record.Issues) != 0 {
		t.Errorf("Expected healthy record, got %+v", record)
	}
}

func TestCheckHealthSeverityIsMonotonic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := surface.NewMockSurface(ctrl)
	s.EXPECT().IsDestroyed().Return(false)
	s.EXPECT().View().Return(nil)
	s.EXPECT().State().Return(&surface.State{})
	s.EXPECT().Commands().Return(nil)
	s.EXPECT().Document().Return(document.Empty(), nil)

	record := CheckHealth(s)
	// ERROR の後の WARNING で状態が下がらない
	if record.State != health.Error {
		t.Errorf("Expected ERROR, got %s", record.State)
	}
	if !record.Has(health.IssueViewMissing) || !record.Has(health.IssueCommandsMissing) {
		t.Errorf("Expected both issues, got %v", record.Issues)
	}
}

func TestCheckHealthMemoryLeakOnlyFromHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	view := surface.NewMockView(ctrl)
	view.EXPECT().Root().Return(nil).AnyTimes()

	healthy := surface.NewMockSurface(ctrl)
	healthy.EXPECT().IsDestroyed().Return(false)
	healthy.EXPECT().View().Return(view)
	healthy.EXPECT().State().Return(&surface.State{})
	healthy.EXPECT().Commands().Return(surface.NewMockCommands(ctrl))
	healthy.EXPECT().Document().Return(document.Empty(), nil)

	record := CheckHealth(healthy)
	if record.State != health.Warning || !record.Has(health.IssueMemoryLeak) {
		t.Errorf("Expected memory leak warning, got %+v", record)
	}

	failing := surface.NewMockSurface(ctrl)
	failing.EXPECT().IsDestroyed().Return(false)
	failing.EXPECT().View().Return(view)
	failing.EXPECT().State().Return(nil)
	failing.EXPECT().Commands().Return(surface.NewMockCommands(ctrl))
	failing.EXPECT().Document().Return(nil, errors.New("gone"))

	record = CheckHealth(failing)
	if record.Has(health.IssueMemoryLeak) {
		t.Errorf("Memory leak signal should only be raised from HEALTHY, got %v", record.Issues)
	}
}

func TestMonitorNotifiesOnlyOnChange(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	s := memsurface.New()
	bus := event.NewBus()

	var states []health.State
	var published int
	bus.On(event.TypeHealthChanged, func(event.Event) { published++ })

	m := New(s, clock, func(state health.State, _ health.Record) {
		states = append(states, state)
	}, WithBus(bus))
	m.Start()
	defer m.Destroy()

	if len(states) != 0 {
		t.Fatalf("Healthy start should not notify, got %v", states)
	}

	s.Detach()
	clock.Advance(DefaultInterval)
	clock.Advance(DefaultInterval)
	if len(states) != 1 || states[0] != health.Warning {
		t.Fatalf("Expected one WARNING notification, got %v", states)
	}

	s.RestoreView()
	clock.Advance(DefaultInterval)
	if len(states) != 2 || states[1] != health.Healthy {
		t.Errorf("Expected return to HEALTHY, got %v", states)
	}
	if published != 2 {
		t.Errorf("Expected 2 bus events, got %d", published)
	}
	if m.State() != health.Healthy {
		t.Errorf("Expected HEALTHY state, got %s", m.State())
	}
}

func TestMonitorBoundedRecovery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := scheduler.NewManual(time.Unix(0, 0))
	cmds := surface.NewMockCommands(ctrl)
	s := surface.NewMockSurface(ctrl)
	s.EXPECT().IsDestroyed().Return(false).AnyTimes()
	s.EXPECT().View().Return(nil).AnyTimes()
	s.EXPECT().State().Return(&surface.State{}).AnyTimes()
	s.EXPECT().Commands().Return(cmds).AnyTimes()
	s.EXPECT().Document().Return(document.Empty(), nil).AnyTimes()

	recoveries := 0
	cmds.EXPECT().SetContent(gomock.Any()).DoAndReturn(func(*document.Node) error {
		recoveries++
		return nil
	}).AnyTimes()

	m := New(s, clock, nil)
	m.Start()
	defer m.Destroy()

	clock.Advance(25 * time.Second)
	if recoveries != MaxRecoveryAttempts {
		t.Fatalf("Expected %d recoveries within cooldown, got %d", MaxRecoveryAttempts, recoveries)
	}

	clock.Advance(5 * time.Second)
	if recoveries != MaxRecoveryAttempts+1 {
		t.Errorf("Expected counter reset after cooldown, got %d recoveries", recoveries)
	}

	clock.Advance(30 * time.Second)
	if recoveries > 2*MaxRecoveryAttempts+1 {
		t.Errorf("Recovery exceeded bound: %d", recoveries)
	}
}

func TestMonitorRecoveryPanicIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := scheduler.NewManual(time.Unix(0, 0))
	logger := core.NewMockLogger(ctrl)
	logger.EXPECT().Log("info", gomock.Any()).AnyTimes()
	logger.EXPECT().Log("error", gomock.Any()).Times(1)

	s := memsurface.New(memsurface.WithoutView())
	m := New(s, clock, nil, WithLogger(logger))
	m.actions[health.IssueViewMissing] = recoveryAction{
		name: "explode",
		run:  func(surface.Surface) error { panic("boom") },
	}

	record := m.CheckNow()
	if record.State != health.Error {
		t.Errorf("Expected ERROR, got %s", record.State)
	}
	if m.Attempts() != 1 {
		t.Errorf("Expected one attempt, got %d", m.Attempts())
	}
}

func TestMonitorRefreshesViewWhenUnreadable(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	s := memsurface.New()
	s.PanicOnRead(true)

	m := New(s, clock, nil)
	m.CheckNow()
	if s.RefreshCount() != 1 {
		t.Errorf("Expected view refresh during recovery, got %d", s.RefreshCount())
	}
}

func TestMonitorStartIsIdempotent(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	m := New(memsurface.New(), clock, nil)
	m.Start()
	m.Start()
	m.Start()
	if clock.Pending() != 1 {
		t.Errorf("Expected a single polling timer, got %d", clock.Pending())
	}
	m.Stop()
	if clock.Pending() != 0 {
		t.Errorf("Stop should cancel the polling timer, got %d", clock.Pending())
	}
}

func TestMonitorDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := scheduler.NewManual(time.Unix(0, 0))
	s := surface.NewMockSurface(ctrl)
	s.EXPECT().IsDestroyed().Return(true).Times(1)

	notified := 0
	m := New(s, clock, func(health.State, health.Record) { notified++ })
	m.Start()
	if notified != 1 || m.State() != health.Destroyed {
		t.Fatalf("Expected DESTROYED notification, got %d (%s)", notified, m.State())
	}

	m.Destroy()
	m.Destroy()
	clock.Advance(time.Minute)
	m.CheckNow()
	if notified != 1 {
		t.Errorf("Destroyed monitor should not notify again")
	}
}

func TestMonitorStopReleasesSurface(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	s := memsurface.New()
	s.PanicOnRead(true)

	m := New(s, clock, nil)
	m.Start()
	if s.RefreshCount() != 1 {
		t.Fatalf("Expected recovery on start, got %d refreshes", s.RefreshCount())
	}
	m.Stop()
	if clock.Pending() != 0 {
		t.Fatalf("Stop should cancel every timer, got %d", clock.Pending())
	}

	// 停止後の診断は編集面に触れず、復旧もタイマーも予約しない
	record := m.CheckNow()
	if !record.Has(health.IssueSurfaceMissing) {
		t.Errorf("Expected surface missing after Stop, got %v", record.Issues)
	}
	if clock.Pending() != 0 {
		t.Errorf("CheckNow after Stop should not schedule timers, got %d", clock.Pending())
	}
	if m.Attempts() != 0 {
		t.Errorf("Expected no recovery attempt after Stop, got %d", m.Attempts())
	}
	if s.RefreshCount() != 1 {
		t.Errorf("Stopped monitor should not touch the surface, got %d refreshes", s.RefreshCount())
	}
}
