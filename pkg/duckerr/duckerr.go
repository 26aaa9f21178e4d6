// Package duckerr defines the closed taxonomy of errors reported by the
// DuckDB engine subprocess and the classification of its raw diagnostics.
package duckerr

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies one category of engine failure. Every error surfaced by
// the library carries exactly one Kind; diagnostics that match no known
// category classify as KindUnknown rather than being dropped.
type Kind int

const (
	KindUnknown Kind = iota
	KindBinder
	KindCatalog
	KindConnection
	KindConstraint
	KindConversion
	KindData
	KindDependency
	KindFatal
	KindIntegrity
	KindInternal
	KindInterrupt
	KindInvalidInput
	KindInvalidType
	KindIO
	KindNotImplemented
	KindNotSupported
	KindOperational
	KindOutOfMemory
	KindOutOfRange
	KindParser
	KindPermission
	KindProgramming
	KindSequence
	KindSerialization
	KindSyntax
	KindTransaction
	KindTypeMismatch
)

var kindNames = map[Kind]string{
	KindUnknown:        "Unknown",
	KindBinder:         "Binder",
	KindCatalog:        "Catalog",
	KindConnection:     "Connection",
	KindConstraint:     "Constraint",
	KindConversion:     "Conversion",
	KindData:           "Data",
	KindDependency:     "Dependency",
	KindFatal:          "Fatal",
	KindIntegrity:      "Integrity",
	KindInternal:       "Internal",
	KindInterrupt:      "Interrupt",
	KindInvalidInput:   "Invalid Input",
	KindInvalidType:    "Invalid Type",
	KindIO:             "IO",
	KindNotImplemented: "Not Implemented",
	KindNotSupported:   "Not Supported",
	KindOperational:    "Operational",
	KindOutOfMemory:    "Out of Memory",
	KindOutOfRange:     "Out of Range",
	KindParser:         "Parser",
	KindPermission:     "Permission",
	KindProgramming:    "Programming",
	KindSequence:       "Sequence",
	KindSerialization:  "Serialization",
	KindSyntax:         "Syntax",
	KindTransaction:    "Transaction",
	KindTypeMismatch:   "Type Mismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is a classified engine failure. It is immutable after construction.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s Error: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same Kind, enabling
// errors.Is(err, &duckerr.Error{Kind: duckerr.KindSyntax}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New constructs an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// classifiers maps the normalized category name that precedes the first
// colon of a raw diagnostic to its Kind. The prefixes are disjoint so
// lookup order never affects the outcome.
var classifiers = map[string]Kind{
	"binder":             KindBinder,
	"catalog":            KindCatalog,
	"connection":         KindConnection,
	"constraint":         KindConstraint,
	"conversion":         KindConversion,
	"data":               KindData,
	"dependency":         KindDependency,
	"fatal":              KindFatal,
	"integrity":          KindIntegrity,
	"internal":           KindInternal,
	"interrupt":          KindInterrupt,
	"invalid input":      KindInvalidInput,
	"invalid type":       KindInvalidType,
	"invalid":            KindInvalidInput,
	"io":                 KindIO,
	"not implemented":    KindNotImplemented,
	"not supported":      KindNotSupported,
	"operational":        KindOperational,
	"out of memory":      KindOutOfMemory,
	"out of range":       KindOutOfRange,
	"parser":             KindParser,
	"permission":         KindPermission,
	"programming":        KindProgramming,
	"sequence":           KindSequence,
	"serialization":      KindSerialization,
	"syntax":             KindSyntax,
	"transaction":        KindTransaction,
	"transactioncontext": KindTransaction,
	"mismatch type":      KindTypeMismatch,
	"type mismatch":      KindTypeMismatch,
}

// Classify maps a raw "<Category>:<message>" diagnostic string onto a typed
// Error. Classification is total: strings without a recognized category
// prefix become KindUnknown with the whole input as the message.
func Classify(raw string) *Error {
	name, message, found := strings.Cut(raw, ":")
	if !found {
		return &Error{Kind: KindUnknown, Message: strings.TrimSpace(raw)}
	}
	kind, ok := classifiers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return &Error{Kind: KindUnknown, Message: strings.TrimSpace(raw)}
	}
	return &Error{Kind: kind, Message: strings.TrimSpace(message)}
}

// diagnosticPattern recognizes the "<Category> Error: <detail>" shape the
// engine writes to its error stream, e.g.
//
//	Parser Error: syntax error at or near "SELEKT"
var diagnosticPattern = regexp.MustCompile(`(?m)^\s*([A-Za-z ]+?) Error:\s*(.*)$`)

// ParseDiagnostic scans accumulated error-stream text for an engine
// diagnostic and classifies it. Text that matches no diagnostic shape is
// wrapped whole as KindUnknown, so the caller always receives an error when
// the stream was non-empty.
func ParseDiagnostic(stderr string) *Error {
	m := diagnosticPattern.FindStringSubmatch(stderr)
	if m == nil {
		return &Error{Kind: KindUnknown, Message: strings.TrimSpace(stderr)}
	}
	return Classify(m[1] + ":" + m[2])
}

// abortedPhrases are the engine's ways of saying the current transaction is
// in an aborted state. A statement failing this way also prevents any
// trailing statement in the same submission from running, which the process
// engine must detect without waiting for its completion marker.
var abortedPhrases = []string{
	"transaction is aborted",
	"current transaction has been aborted",
}

// IsTransactionAborted reports whether the error-stream text contains the
// engine's aborted-transaction diagnostic.
func IsTransactionAborted(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, phrase := range abortedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
