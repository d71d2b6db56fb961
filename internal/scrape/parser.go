package scrape

import "github.com/grubmail/grubmail/internal/mailbox"

// Status classifies the result of parsing one message.
type Status int

const (
	// StatusAccepted means the message parsed into an Order.
	StatusAccepted Status = iota

	// StatusNotApplicable means the message is not an order
	// confirmation in the parser's dialect. Expected and frequent;
	// not an error.
	StatusNotApplicable

	// StatusMalformed means the message looked like an order
	// confirmation but extraction failed. This signals the grammar
	// may be stale and needs review.
	StatusMalformed
)

// Outcome is the tagged result of parsing one message. Exactly one of
// the three states applies: Order is set only on StatusAccepted and
// Reason only on StatusMalformed.
type Outcome struct {
	Status Status
	Order  *Order
	Reason string
}

// Accepted wraps a successfully extracted order.
func Accepted(order *Order) Outcome {
	return Outcome{Status: StatusAccepted, Order: order}
}

// NotApplicable marks a message outside the parser's dialect.
func NotApplicable() Outcome {
	return Outcome{Status: StatusNotApplicable}
}

// Malformed marks a message that matched the dialect precondition but
// could not be extracted.
func Malformed(reason string) Outcome {
	return Outcome{Status: StatusMalformed, Reason: reason}
}

// Parser extracts orders for one email dialect. The batch runner holds
// a Parser, never a concrete type, so new dialects plug in without
// touching the runner.
type Parser interface {
	// Dialect names the document format the parser targets.
	Dialect() string

	// Parse extracts an Order from one message.
	Parse(msg mailbox.Message) Outcome
}
