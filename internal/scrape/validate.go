package scrape

import (
	"log/slog"
	"strings"

	"github.com/grubmail/grubmail/internal/decode"
	"github.com/grubmail/grubmail/internal/mailbox"
)

// Verdict reports the result of each reconciliation rule for one
// order. An order is retained for export only if every rule passed.
type Verdict struct {
	SubtotalOK      bool
	ModifierCountOK bool
}

// Valid reports whether every rule passed.
func (v Verdict) Valid() bool {
	return v.SubtotalOK && v.ModifierCountOK
}

// Validate re-derives the order's subtotal and modifier count from the
// raw message, independently of the structured parse, and checks that
// both extractions agree. The extraction grammar is heuristic, so this
// self-consistency check is the only guard against silent mis-parses.
// A failing rule marks the order invalid; it never raises.
func Validate(order *Order, msg mailbox.Message) Verdict {
	return Verdict{
		SubtotalOK:      subtotalConsistent(order),
		ModifierCountOK: modifierCountConsistent(order, msg),
	}
}

// subtotalConsistent checks that the sum of item prices equals the
// resolved subtotal field, both rounded to two places. The rule fails
// when no subtotal-like key was extracted at all.
func subtotalConsistent(order *Order) bool {
	subtotal, ok := order.Subtotal()
	if !ok {
		return false
	}
	return subtotal.Round(2).Equal(order.ItemTotal().Round(2))
}

// modifierCountConsistent re-decodes the raw message, re-isolates the
// items segment and counts occurrences of whichever bullet variant is
// actually present, then compares against the parsed modifier total.
func modifierCountConsistent(order *Order, msg mailbox.Message) bool {
	text, err := decode.Decode(msg.Raw)
	if err != nil {
		slog.Warn("Modifier-count rule could not re-decode message; the rule may need updating",
			"message_id", msg.ID, "error", err)
		return false
	}
	segment, err := itemsSegment(text)
	if err != nil {
		slog.Warn("Modifier-count rule could not re-isolate items segment",
			"message_id", msg.ID, "error", err)
		return false
	}

	bullet := detectBullet(segment)
	return strings.Count(segment, bullet) == order.ModifierCount()
}
