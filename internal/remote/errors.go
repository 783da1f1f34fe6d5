// Package remote defines the error taxonomy and connectivity states shared
// by the outbound integration clients.
package remote

import (
	"errors"
	"fmt"
)

// Kind classifies an integration failure. Only ServiceDisabled and
// Unreachable may be absorbed into a fallback response; RemoteRejected and
// BadResponse are real failures and must reach the caller.
type Kind int

const (
	// KindServiceDisabled means the integration gate is off. Expected, not
	// an outage.
	KindServiceDisabled Kind = iota
	// KindUnreachable covers transport failures and timeouts.
	KindUnreachable
	// KindRemoteRejected means the upstream returned a well-formed error.
	KindRemoteRejected
	// KindBadResponse means the upstream payload could not be parsed.
	KindBadResponse
)

func (k Kind) String() string {
	switch k {
	case KindServiceDisabled:
		return "ServiceDisabled"
	case KindUnreachable:
		return "Unreachable"
	case KindRemoteRejected:
		return "RemoteRejected"
	case KindBadResponse:
		return "BadResponse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type crossing the integration boundary. Callers
// never see a raw transport error.
type Error struct {
	Integration string // "ghl" | "tavily"
	Op          string // operation name, ex: "create_contact"
	Kind        Kind
	Status      int    // upstream HTTP status, 0 when not applicable
	Detail      string // upstream message, verbatim
	Err         error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Integration, e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Disabled builds a ServiceDisabled error for an operation short-circuited
// by the capability gate.
func Disabled(integration, op string) *Error {
	return &Error{Integration: integration, Op: op, Kind: KindServiceDisabled}
}

// Unreachable builds an Unreachable error from a transport or timeout
// failure.
func Unreachable(integration, op string, err error) *Error {
	return &Error{Integration: integration, Op: op, Kind: KindUnreachable, Err: err}
}

// Rejected builds a RemoteRejected error carrying the upstream status and
// message verbatim.
func Rejected(integration, op string, status int, detail string) *Error {
	return &Error{Integration: integration, Op: op, Kind: KindRemoteRejected, Status: status, Detail: detail}
}

// BadResponse builds a BadResponse error for a malformed upstream payload.
func BadResponse(integration, op string, err error) *Error {
	return &Error{Integration: integration, Op: op, Kind: KindBadResponse, Err: err}
}

// KindOf extracts the Kind from err. ok is false when err is not an
// integration error.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// Absorbable reports whether err should be replaced by a fallback response
// rather than surfaced to the caller.
func Absorbable(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindServiceDisabled || k == KindUnreachable)
}
