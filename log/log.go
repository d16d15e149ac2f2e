// Package log provides the audit-logging interface the TA core uses to
// record human-readable reasons alongside every response APDU.
// It carries no protocol meaning; it exists purely so operators can see why
// a given APDU was rejected.
package log

import (
	"fmt"
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// Logger is the audit-logging surface the TA core depends on. It mirrors
// the shape of an AuditLogger: informational, warning, and error-grade
// audit lines, plus a catch-all Audit for lines that don't fit neatly into
// the other three.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Err(msg string)
	Audit(msg string)
}

// logrLogger adapts a logr.Logger (here backed by stdr, writing to the
// standard library's log package) to Logger.
type logrLogger struct {
	l logr.Logger
}

// New returns a Logger that writes structured lines via go-logr/stdr.
func New(name string) Logger {
	stdr.SetVerbosity(1)
	base := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))
	return &logrLogger{l: base.WithName(name)}
}

func (l *logrLogger) Info(msg string) {
	l.l.V(1).Info(msg)
}

func (l *logrLogger) Warning(msg string) {
	l.l.Info(fmt.Sprintf("WARNING: %s", msg))
}

func (l *logrLogger) Err(msg string) {
	l.l.Error(nil, msg)
}

func (l *logrLogger) Audit(msg string) {
	l.l.Info(fmt.Sprintf("AUDIT: %s", msg))
}

// nopLogger discards everything; useful as a zero-value default in tests.
type nopLogger struct{}

// NewNop returns a Logger that discards all lines.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Err(string)     {}
func (nopLogger) Audit(string)   {}
