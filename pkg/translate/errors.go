package translate

import "fmt"

// ErrorKind classifies a translation failure the way §7 groups them.
type ErrorKind string

const (
	KindUnknownKey  ErrorKind = "unknown_key"
	KindValueError  ErrorKind = "value_error"
	KindResolveErr  ErrorKind = "resolve_error"
	KindIdMapError  ErrorKind = "idmap_error"
	KindUnsupported ErrorKind = "unsupported"
)

// Error reports a single translation defect, anchored to the source unit
// that produced it.
type Error struct {
	Kind ErrorKind
	Unit string
	Msg  string
}

func (e *Error) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("%s: %s", e.Unit, e.Msg)
	}
	return e.Msg
}

func newError(kind ErrorKind, unit, format string, args ...any) *Error {
	return &Error{Kind: kind, Unit: unit, Msg: fmt.Sprintf(format, args...)}
}
