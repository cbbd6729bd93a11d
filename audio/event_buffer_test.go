package audio

import (
	"context"
	"testing"
)

func TestEventBufferFull(t *testing.T) {
	buf := newEventBuffer(4)
	for n := 0; n < 4; n++ {
		if !buf.push(event{seq: uint64(n)}) {
			t.Fatalf("push %d: buffer reported full", n)
		}
	}
	if buf.push(event{seq: 4}) {
		t.Errorf("expected push on a full buffer to fail")
	}

	var got []uint64
	buf.iter(func(ev event) {
		got = append(got, ev.seq)
	})
	if want := 4; len(got) != want {
		t.Errorf("expected %v events, got %v", want, len(got))
	}
	if !buf.push(event{seq: 5}) {
		t.Errorf("expected room after draining")
	}
}

func TestEventBufferDrop(t *testing.T) {
	buf := newEventBuffer(8)
	buf.push(event{seq: 1})
	buf.push(event{seq: 2})
	buf.drop()

	var events []event
	buf.iter(func(ev event) {
		events = append(events, ev)
	})
	if want, got := 0, len(events); want != got {
		t.Errorf("expected zero events, got %v", got)
	}
}

func TestEventBuffer(t *testing.T) {
	buf := newEventBuffer(8)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var events []event
	go func() {
		for {
			select {
			case <-ctx.Done():
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
				done <- struct{}{}
				return
			default:
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
			}
		}
	}()

	const numEvents = 1_000_000
	for n := 0; n < numEvents; n++ {
		for !buf.push(event{seq: uint64(n)}) {
		}
	}

	cancel()
	<-done

	if len(events) != numEvents {
		t.Errorf("wrong number of events: want %v, got %v", numEvents, len(events))
	}

	prev := -1
	for _, ev := range events {
		if want, got := uint64(prev+1), ev.seq; want != got {
			t.Errorf("discontinuous event sequence: want: %v, got %v", want, got)
		}
		prev++
	}
}
