package eventbus

import "testing"

type tickEvent struct{ Clock float64 }

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(tickEvent{Clock: 42})
	v := <-ch
	if ev, ok := v.(tickEvent); !ok || ev.Clock != 42 {
		t.Fatalf("expected tick 42 got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusBufferedDropsWhenFull(t *testing.T) {
	bus := New()
	ch := bus.SubscribeBuffered(1)
	bus.Publish(tickEvent{Clock: 1})
	bus.Publish(tickEvent{Clock: 2})
	v := <-ch
	if ev := v.(tickEvent); ev.Clock != 1 {
		t.Fatalf("expected first event, got %v", ev)
	}
	select {
	case v := <-ch:
		t.Fatalf("expected overflow drop, got %v", v)
	default:
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
