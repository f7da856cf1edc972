package debounce_test

import (
	"testing"
	"time"

	"rent-admin/internal/debounce"
	"rent-admin/internal/debounce/debouncetest"
)

func TestDebounceFiresOnceAfterQuiescence(t *testing.T) {
	clock := &debouncetest.Clock{}
	type fired struct {
		value string
		at    time.Duration
	}
	var calls []fired
	d := debounce.New(300*time.Millisecond, clock, func(v string) {
		calls = append(calls, fired{v, clock.Now()})
	})

	d.Trigger("g")
	clock.Advance(50 * time.Millisecond)
	d.Trigger("go")
	clock.Advance(50 * time.Millisecond)
	d.Trigger("gow")
	clock.Advance(150 * time.Millisecond)
	d.Trigger("gown")

	clock.Advance(299 * time.Millisecond)
	if len(calls) != 0 {
		t.Fatalf("fired early: %+v", calls)
	}
	clock.Advance(time.Millisecond)
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].value != "gown" || calls[0].at != 550*time.Millisecond {
		t.Errorf("call = %+v, want gown at 550ms", calls[0])
	}

	clock.Advance(time.Second)
	if len(calls) != 1 {
		t.Errorf("extra calls after window: %+v", calls)
	}
}

func TestDebounceStop(t *testing.T) {
	clock := &debouncetest.Clock{}
	calls := 0
	d := debounce.New(debounce.DefaultWindow, clock, func(string) { calls++ })

	d.Trigger("x")
	if !d.Pending() {
		t.Error("Pending = false after Trigger")
	}
	d.Stop()
	clock.Advance(time.Second)
	if calls != 0 || d.Pending() {
		t.Errorf("calls = %d pending = %v after Stop", calls, d.Pending())
	}
}

func TestDebounceSeparateBursts(t *testing.T) {
	clock := &debouncetest.Clock{}
	var values []int
	d := debounce.New(100*time.Millisecond, clock, func(v int) { values = append(values, v) })

	d.Trigger(1)
	clock.Advance(200 * time.Millisecond)
	d.Trigger(2)
	clock.Advance(200 * time.Millisecond)
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Errorf("values = %v", values)
	}
}
