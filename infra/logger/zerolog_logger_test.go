package logger

import (
	"testing"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("sim")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("tick %d", 1)
	l.Debugw("tick", map[string]any{"clock": 1.0})
	l.Infof("truck %s dispatched", "T1")
	l.Warnf("queue not fully fuel feasible")
	l.Errorf("route fetch failed")
}

func TestNewReturnsLogger(t *testing.T) {
	if l := New("api"); l == nil {
		t.Fatal("nil logger")
	}
}
