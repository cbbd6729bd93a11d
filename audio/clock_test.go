package audio

import (
	"reflect"
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Unix(0, 0)
	clock := NewManualClock(start)

	var fired []time.Duration
	cancel := clock.Every(100*time.Millisecond, func() {
		fired = append(fired, clock.Now().Sub(start))
	})
	clock.Advance(99 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}
	clock.Advance(251 * time.Millisecond)
	if want, got := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, fired; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong callback times:\nwant: %v\ngot:  %v", want, got)
	}
	if want, got := 350*time.Millisecond, clock.Now().Sub(start); want != got {
		t.Errorf("want clock at %v, got %v", want, got)
	}

	cancel()
	clock.Advance(time.Second)
	if want, got := 3, len(fired); want != got {
		t.Errorf("want %v callbacks after cancel, got %v", want, got)
	}
}

func TestManualClockOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var order []string
	clock.Every(30*time.Millisecond, func() { order = append(order, "slow") })
	clock.Every(20*time.Millisecond, func() { order = append(order, "fast") })
	clock.Advance(60 * time.Millisecond)

	want := []string{"fast", "slow", "fast", "fast", "slow"}
	if !reflect.DeepEqual(want, order) {
		t.Errorf("wrong order:\nwant: %v\ngot:  %v", want, order)
	}
}

func TestManualClockCancelFromCallback(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var n int
	var cancel func()
	cancel = clock.Every(10*time.Millisecond, func() {
		n++
		if n == 2 {
			cancel()
		}
	})
	clock.Advance(time.Second)
	if want, got := 2, n; want != got {
		t.Errorf("want %v calls, got %v", want, got)
	}
}

func TestSystemClockCancel(t *testing.T) {
	calls := make(chan struct{}, 100)
	cancel := SystemClock().Every(time.Millisecond, func() {
		calls <- struct{}{}
	})
	<-calls
	cancel()
	cancel() // idempotent
}
