package metrics

import (
	"errors"
	"testing"
)

type captureSink struct {
	deliveries []DeliveryRecord
	ticks      []TickStats
	err        error
}

func (c *captureSink) RecordDelivery(rec DeliveryRecord) error {
	if c.err != nil {
		return c.err
	}
	c.deliveries = append(c.deliveries, rec)
	return nil
}

func (c *captureSink) RecordTick(stats TickStats) error {
	c.ticks = append(c.ticks, stats)
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a, b := &captureSink{}, &captureSink{}
	m := NewMultiSink(a, b, NopSink{})

	if err := m.RecordDelivery(DeliveryRecord{TruckID: "T1", HubID: "H1"}); err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if len(a.deliveries) != 1 || len(b.deliveries) != 1 {
		t.Fatalf("fanout missed a sink: %d/%d", len(a.deliveries), len(b.deliveries))
	}

	// NopSink does not implement TickRecorder and must be skipped silently.
	if err := m.RecordTick(TickStats{Clock: 3}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(a.ticks) != 1 || len(b.ticks) != 1 {
		t.Fatalf("tick fanout missed a sink")
	}
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMultiSink(&captureSink{err: boom}, &captureSink{})
	if err := m.RecordDelivery(DeliveryRecord{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
