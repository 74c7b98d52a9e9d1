package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned when an operation is triggered by a
	// principal that is not permitted to do so.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a requested entry does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrAddress is returned when an identity string is not a valid
	// address.
	ErrAddress = Register(4, "invalid address")

	// ErrWeights is returned when a weight table is malformed, most
	// importantly when the shares do not sum up to exactly one.
	ErrWeights = Register(5, "invalid weights")

	// ErrNothingToClaim is returned when a withdrawal is requested for a
	// zero claimable balance.
	ErrNothingToClaim = Register(6, "nothing to claim")

	// ErrOverflow is returned when an additive operation would exceed the
	// amount range. Amounts are never silently saturated.
	ErrOverflow = Register(7, "amount overflow")

	// ErrUnderflow is returned when a subtractive operation would drop an
	// amount below zero.
	ErrUnderflow = Register(8, "amount underflow")

	// ErrClaimsExecuted blocks a weight migration because funds were
	// already withdrawn under the current table.
	ErrClaimsExecuted = Register(9, "claims already executed")

	// ErrBalanceOutstanding blocks a weight migration because the ledger
	// still manages an undistributed balance.
	ErrBalanceOutstanding = Register(10, "managed balance outstanding")

	// ErrInconsistency signals a broken ledger invariant, for example the
	// actual holdings being smaller than the managed balance. This is
	// never caused by bad input and always aborts the whole operation.
	ErrInconsistency = Register(11, "ledger inconsistency")

	// ErrInput is a generic malformed input error for cases not covered
	// by a more specific root.
	ErrInput = Register(12, "invalid input")

	// ErrDatabase is returned on a malfunction of the underlying
	// key-value store.
	ErrDatabase = Register(13, "database error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but extensions may want
// to declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No
// two error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is reserved for non-classified errors and must not be used.
}

// Error represents a root error.
//
// The ledger uses root errors to categorize issues. Each instance created
// during the runtime should wrap one of the declared root errors. This
// allows error tests without string matching and returning all errors to
// the caller in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric classification of this error root.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set
// to this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is checks if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement
// when wrapping an error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional functionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

// stackTrace returns the first found stack trace frames attached to given
// error chain, or nil if none is carried.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stops its propagation. If panic happens it
// is transformed into a ErrPanic instance and assigned to given error. Call
// this function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping.
// Use it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}
