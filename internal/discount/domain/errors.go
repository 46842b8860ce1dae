package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInput is raised before any network call: empty code or empty cart.
	KindInput Kind = iota
	// KindRejected means the server declined the code; Reason is shown verbatim.
	KindRejected
	// KindTransport covers network failures, timeouts and malformed responses.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "INPUT"
	case KindRejected:
		return "REJECTED"
	case KindTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

const (
	ReasonEmptyCode     = "coupon code is required"
	ReasonEmptyCart     = "cannot apply a discount to an empty cart"
	ReasonTransportFail = "failed to apply discount"
)

// ErrStaleResponse marks a validation response dropped because a newer request for
// the same code was issued after it.
var ErrStaleResponse = errors.New("discount response superseded by a newer request")

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func InputError(reason string) *Error {
	return &Error{Kind: KindInput, Reason: reason}
}

func Rejected(reason string) *Error {
	if reason == "" {
		reason = "discount code rejected"
	}
	return &Error{Kind: KindRejected, Reason: reason}
}

func TransportError(err error) *Error {
	return &Error{Kind: KindTransport, Reason: ReasonTransportFail, Err: err}
}

func Malformed(detail string) *Error {
	return TransportError(fmt.Errorf("malformed discount response: %s", detail))
}

// KindOf reports the Kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
