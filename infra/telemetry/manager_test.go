package telemetry

import (
	"errors"
	"testing"
)

type mockAcker struct {
	count int
	last  string
	err   error
}

func (m *mockAcker) AckInstruction(truckID string) error {
	m.count++
	m.last = truckID
	return m.err
}

func TestProcessAck(t *testing.T) {
	acker := &mockAcker{}
	l := &AckListener{acker: acker}
	if err := l.process("dispatch/trucks/T7/ack", []byte(`{"instruction_id":"abc"}`)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if acker.count != 1 || acker.last != "T7" {
		t.Fatalf("unexpected ack %d %q", acker.count, acker.last)
	}
}

func TestProcessAckEmptyPayload(t *testing.T) {
	acker := &mockAcker{}
	l := &AckListener{acker: acker}
	if err := l.process("dispatch/trucks/T1/ack", nil); err != nil {
		t.Fatalf("process: %v", err)
	}
	if acker.last != "T1" {
		t.Fatalf("expected T1, got %q", acker.last)
	}
}

func TestProcessAckBadJSON(t *testing.T) {
	acker := &mockAcker{}
	l := &AckListener{acker: acker}
	if err := l.process("dispatch/trucks/T1/ack", []byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if acker.count != 0 {
		t.Fatal("acker must not be called on decode failure")
	}
}

func TestProcessAckApplyError(t *testing.T) {
	wantErr := errors.New("no active instruction")
	l := &AckListener{acker: &mockAcker{err: wantErr}}
	if err := l.process("dispatch/trucks/T1/ack", nil); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestTruckIDFromTopic(t *testing.T) {
	if id := truckIDFromTopic("dispatch/trucks/T42/ack"); id != "T42" {
		t.Fatalf("unexpected id %s", id)
	}
	if id := truckIDFromTopic("ack"); id != "" {
		t.Fatalf("expected empty id, got %s", id)
	}
}
