package domain

import "errors"

// Vector is one embedding row: the floats that follow a word in the table file.
type Vector []float64

// ErrSealed is returned by Storage.Put once the table has been sealed.
var ErrSealed = errors.New("table is sealed")

// Table is the read side of an embedding table. The mapper only ever reads
// through this interface, so the backing store can live in memory or on disk.
type Table interface {
	Lookup(word string) (Vector, bool, error)
	Len() (int, error)
}

// Storage is a Table that can be built incrementally by the loader.
// Put overwrites an existing word and reports whether it did. Seal finishes
// the build; afterwards the table is read-only.
type Storage interface {
	Table
	Put(word string, vec Vector) (replaced bool, err error)
	Seal() error
	Sealed() bool
	Close() error
}

// PersistentStorage is a Storage that outlives the process. It remembers
// which table file built it so a later run can tell whether the sealed
// contents are still current.
type PersistentStorage interface {
	Storage
	SetSource(source string) error
	Source() string
	Reset() error
}

// DiagnosticKind classifies a non-fatal condition raised while mapping.
type DiagnosticKind string

const (
	WordNotFound DiagnosticKind = "word_not_found"
	TermNotFound DiagnosticKind = "term_not_found"
)

// Diagnostic is a single reported lookup miss.
type Diagnostic struct {
	Kind    DiagnosticKind
	Context string
}

// Sink receives diagnostics. Reporting never fails and never stops a run.
type Sink interface {
	Report(kind DiagnosticKind, context string)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(kind DiagnosticKind, context string)

func (f SinkFunc) Report(kind DiagnosticKind, context string) { f(kind, context) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(DiagnosticKind, string) {})
