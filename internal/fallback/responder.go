// Package fallback is the single dispatch point turning an integration
// outage into a deterministic, user-safe response. Only gate-off and
// unreachable failures are absorbed here; upstream rejections and contract
// violations stay errors so monitoring can see them.
package fallback

import (
	"github.com/braxlabs/facet/internal/remote"
)

// Op names an operation family with its own fallback message.
type Op string

const (
	OpContacts     Op = "contacts"
	OpScheduling   Op = "scheduling"
	OpMessages     Op = "messages"
	OpTransactions Op = "transactions"
	OpSearch       Op = "search"
)

// Result is a fallback response: a machine-readable status mirroring the
// error kind plus a fixed user-presentable message.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var defaultMessages = map[Op]string{
	OpContacts:     "Our customer records are temporarily unavailable. Please leave your contact details and we will reach out shortly.",
	OpScheduling:   "Scheduling is temporarily unavailable; we will follow up manually to confirm your appointment.",
	OpMessages:     "Message history is temporarily unavailable. Your conversation is safe and will reappear shortly.",
	OpTransactions: "Payment history is temporarily unavailable. Please check back in a few minutes.",
	OpSearch:       "Live market search is temporarily unavailable, so this answer may not reflect the latest information.",
}

const genericMessage = "This feature is temporarily unavailable. Please try again later."

// Responder maps operation families to their fallback messages. Immutable
// after construction.
type Responder struct {
	messages map[Op]string
}

// NewResponder builds a responder with the built-in message catalog.
func NewResponder() *Responder {
	msgs := make(map[Op]string, len(defaultMessages))
	for op, msg := range defaultMessages {
		msgs[op] = msg
	}
	return &Responder{messages: msgs}
}

// Respond is pure and total: every operation kind yields a fixed message,
// with the status mirroring the error kind that routed here.
func (r *Responder) Respond(op Op, kind remote.Kind) Result {
	msg, ok := r.messages[op]
	if !ok {
		msg = genericMessage
	}
	return Result{Status: kind.String(), Message: msg}
}

// Absorb replaces an absorbable failure (gate off, unreachable) with the
// fallback result for op. Other errors pass through untouched: an upstream
// rejection or malformed payload is a real failure the caller must see.
func (r *Responder) Absorb(op Op, err error) (Result, bool) {
	if !remote.Absorbable(err) {
		return Result{}, false
	}
	kind, _ := remote.KindOf(err)
	return r.Respond(op, kind), true
}
