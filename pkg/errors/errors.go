// Package errors defines the failure taxonomy shared by stackpkg components.
//
// Library code returns *Error values and never terminates the process. The
// CLI is the single place that turns an error into a diagnostic and an exit
// code. Every *Error carries a stack captured with github.com/pkg/errors, so
// formatting it with %+v prints file:line frames for the failure site.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnsupportedPlatform: the package family matches no known package manager,
	// or the OS identification tool could not be found or installed.
	KindUnsupportedPlatform
	// KindUnrecognizedDistro: the vendor string matches no distro tag rule.
	KindUnrecognizedDistro
	// KindInvalidArgument: the caller passed a malformed argument.
	KindInvalidArgument
	// KindRepoUpdate: the repository refresh budget was exhausted.
	KindRepoUpdate
	// KindInstallRetryable: the install failed twice with a transient classification.
	KindInstallRetryable
	// KindInstallFatal: the package manager output shows a package genuinely failed.
	KindInstallFatal
	// KindConfig: configuration could not be loaded or validated.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "unsupported platform"
	case KindUnrecognizedDistro:
		return "unrecognized distro"
	case KindInvalidArgument:
		return "invalid argument"
	case KindRepoUpdate:
		return "repository update failed"
	case KindInstallRetryable:
		return "package install failed"
	case KindInstallFatal:
		return "fatal package install failure"
	case KindConfig:
		return "invalid configuration"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned by stackpkg packages.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "resolver.Resolve".
	Op  string
	Err error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrUnsupportedPlatform = &Error{Kind: KindUnsupportedPlatform}
	ErrUnrecognizedDistro  = &Error{Kind: KindUnrecognizedDistro}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrRepoUpdate          = &Error{Kind: KindRepoUpdate}
	ErrInstallRetryable    = &Error{Kind: KindInstallRetryable}
	ErrInstallFatal        = &Error{Kind: KindInstallFatal}
	ErrConfig              = &Error{Kind: KindConfig}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Format implements fmt.Formatter. %+v appends the stack trace recorded
// when the error was created.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.Error())
			if st := stackOf(e.Err); st != nil {
				fmt.Fprintf(s, "%+v", st)
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf returns the innermost recorded stack trace in the chain.
func stackOf(err error) pkgerrors.StackTrace {
	var st pkgerrors.StackTrace
	for err != nil {
		if t, ok := err.(stackTracer); ok {
			st = t.StackTrace()
		}
		err = stderrors.Unwrap(err)
	}
	return st
}

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: pkgerrors.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: pkgerrors.Wrap(err, message)}
}

func UnsupportedPlatform(op, format string, args ...interface{}) error {
	return New(KindUnsupportedPlatform, op, format, args...)
}

func UnrecognizedDistro(op, format string, args ...interface{}) error {
	return New(KindUnrecognizedDistro, op, format, args...)
}

func InvalidArgument(op, format string, args ...interface{}) error {
	return New(KindInvalidArgument, op, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps an error to the process exit status: 0 for nil, 2 for an
// output-classified fatal install failure, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if KindOf(err) == KindInstallFatal {
		return 2
	}
	return 1
}
