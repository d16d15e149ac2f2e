package log

import "testing"

func TestNewDoesNotPanic(t *testing.T) {
	l := New("test")
	l.Info("info line")
	l.Warning("warning line")
	l.Err("error line")
	l.Audit("audit line")
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Info("x")
	l.Warning("x")
	l.Err("x")
	l.Audit("x")
}
