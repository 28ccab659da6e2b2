package uxpolicy

import (
	"testing"
	"time"

	"github.com/wasya-io/kilonote/app/boundary/scheduler"
)

func TestDebouncerCoalesces(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	var fired []int
	d := NewDebouncer(clock, 100*time.Millisecond, func(v int) { fired = append(fired, v) })

	for i := 1; i <= 5; i++ {
		d.Trigger(i)
		clock.Advance(50 * time.Millisecond)
	}
	if len(fired) != 0 {
		t.Fatalf("Expected no call during bursts, got %v", fired)
	}
	if !d.Pending() {
		t.Errorf("Expected pending call")
	}

	clock.Advance(50 * time.Millisecond)
	if len(fired) != 1 || fired[0] != 5 {
		t.Errorf("Expected single call with last value, got %v", fired)
	}
	if d.Pending() {
		t.Errorf("Expected no pending call after firing")
	}
}

func TestDebouncerCancel(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	calls := 0
	d := NewDebouncer(clock, time.Second, func(struct{}) { calls++ })

	if d.Cancel() {
		t.Errorf("Cancel without pending call should return false")
	}
	d.Trigger(struct{}{})
	if !d.Cancel() {
		t.Errorf("Cancel should report the dropped call")
	}
	clock.Advance(2 * time.Second)
	if calls != 0 {
		t.Errorf("Cancelled call fired %d times", calls)
	}
	if clock.Pending() != 0 {
		t.Errorf("Expected timer to be stopped, got %d", clock.Pending())
	}
}

func TestDebouncerFlush(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	var fired []string
	d := NewDebouncer(clock, time.Second, func(v string) { fired = append(fired, v) })

	if d.Flush() {
		t.Errorf("Flush without pending call should return false")
	}
	d.Trigger("a")
	d.Trigger("b")
	if !d.Flush() {
		t.Errorf("Flush should run the pending call")
	}
	clock.Advance(2 * time.Second)
	if len(fired) != 1 || fired[0] != "b" {
		t.Errorf("Expected exactly one flushed call, got %v", fired)
	}
}

func TestDebouncerTriggerIfIdle(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	var fired []int
	d := NewDebouncer(clock, 50*time.Millisecond, func(v int) { fired = append(fired, v) })

	if !d.TriggerIfIdle(1) {
		t.Errorf("Expected first trigger to schedule")
	}
	clock.Advance(30 * time.Millisecond)
	if d.TriggerIfIdle(2) {
		t.Errorf("Expected second trigger to be ignored")
	}
	clock.Advance(20 * time.Millisecond)
	if len(fired) != 1 || fired[0] != 1 {
		t.Errorf("Expected original deadline to be kept, got %v", fired)
	}
}

func TestDebouncerSetDelay(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	calls := 0
	d := NewDebouncer(clock, time.Second, func(struct{}) { calls++ })
	d.SetDelay(10 * time.Millisecond)
	d.Trigger(struct{}{})
	clock.Advance(10 * time.Millisecond)
	if calls != 1 {
		t.Errorf("Expected new delay to apply, got %d calls", calls)
	}
}
