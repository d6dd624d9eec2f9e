// Package pipeerr defines the pipeline's single fatal-error taxonomy.
// Every error that can abort a run is one of the four kinds below; the
// CLI catches all of them at one point, prints "Error: <msg>" to
// stderr, and exits 1.
package pipeerr

import "errors"

// Kind identifies which of the four error categories an error belongs
// to.
type Kind int

const (
	// KindIO covers missing/unreadable files, absent HDUs, wrong
	// column type or size.
	KindIO Kind = iota
	// KindDecode covers malformed WCS headers, wrong mask dimensions.
	KindDecode
	// KindConfig covers invalid projection-mode arguments, TM out of
	// range, malformed mask-pts lists, invalid bitpix.
	KindConfig
	// KindDomain covers interpolation outside the covered time range,
	// empty/inverted GTIs, and internal invariant violations in GTI
	// merge.
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindConfig:
		return "config"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the taxonomy kind, so callers can
// use errors.Is/As to distinguish categories without string matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// IO wraps err as an I/O-category error.
func IO(msg string, err error) error { return newErr(KindIO, msg, err) }

// Decode wraps err as a decode-category error.
func Decode(msg string, err error) error { return newErr(KindDecode, msg, err) }

// Config wraps err as a config-category error.
func Config(msg string, err error) error { return newErr(KindConfig, msg, err) }

// Domain wraps err as a domain-category error.
func Domain(msg string, err error) error { return newErr(KindDomain, msg, err) }

// KindOf returns the Kind of err if it (or something it wraps) is a
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// HasKind reports whether err (or a wrapped cause) is a *Error of kind
// k.
func HasKind(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
