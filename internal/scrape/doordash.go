package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/grubmail/grubmail/internal/decode"
	"github.com/grubmail/grubmail/internal/mailbox"
)

// ErrItemSegment marks messages whose items segment markers are
// absent. This is a structural precondition of the grammar, not a
// per-item failure.
var ErrItemSegment = errors.New("items segment not found")

const snippetPrefix = "DOORDASH Thanks for your order"

// bulletVariants are the recognized renderings of the modifier list
// separator. Which one appears depends on the charset the decoder
// guessed: the windows-1252 guess turns the UTF-8 bullet into the
// three-character mojibake sequence.
var bulletVariants = []string{"â€¢ ", "• "}

var (
	datePattern    = regexp.MustCompile(`Date: (.+)\n`)
	etaPattern     = regexp.MustCompile(`The estimated delivery time for your order\n is (.+)\.`)
	storePattern   = regexp.MustCompile(`Paid with.+?\n(.*?)\nTotal`)
	addressPattern = regexp.MustCompile(`Your receipt \n(.+\s*)- For:`)
	costPattern    = regexp.MustCompile(`([A-Za-z\s]+) \$([\d.]+)`)
	segmentStart   = regexp.MustCompile(`For: .+`)
	segmentEnd     = regexp.MustCompile(`Subtotal .+`)
	itemPattern    = regexp.MustCompile(`(?s)(\d+)x(.+?)\$([\d.]+)`)
)

// DoorDash parses DoorDash order-confirmation emails.
type DoorDash struct{}

// NewDoorDash creates a DoorDash parser.
func NewDoorDash() *DoorDash {
	return &DoorDash{}
}

// Dialect names the document format the parser targets.
func (d *DoorDash) Dialect() string {
	return "doordash"
}

// Parse extracts an Order from one message. Messages whose snippet
// does not open with the dialect's phrase are not applicable rather
// than failed; anything that breaks after that point means the grammar
// no longer matches what DoorDash sends.
func (d *DoorDash) Parse(msg mailbox.Message) Outcome {
	if msg.ID == "" || msg.Raw == "" || msg.Snippet == "" {
		return NotApplicable()
	}
	if !strings.HasPrefix(msg.Snippet, snippetPrefix) {
		return NotApplicable()
	}

	text, err := decode.Decode(msg.Raw)
	if err != nil {
		return Malformed(err.Error())
	}

	items, err := extractItems(text)
	if err != nil {
		return Malformed(err.Error())
	}

	return Accepted(&Order{
		MessageID:       msg.ID,
		Date:            extractField(text, datePattern),
		StoreName:       extractField(text, storePattern),
		DeliveryAddress: extractField(text, addressPattern),
		ETA:             extractField(text, etaPattern),
		Items:           items,
		CostSummary:     extractCostSummary(text),
	})
}

// extractField applies one single-capture pattern; the first match in
// document order wins. A non-match yields ""; absence is data.
func extractField(text string, pattern *regexp.Regexp) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractCostSummary collects every "<label> $<amount>" occurrence in
// the text. Labels are free-form; later occurrences of the same label
// overwrite earlier ones.
func extractCostSummary(text string) map[string]decimal.Decimal {
	summary := make(map[string]decimal.Decimal)
	for _, m := range costPattern.FindAllStringSubmatch(text, -1) {
		amount, err := decimal.NewFromString(m[2])
		if err != nil {
			continue
		}
		summary[strings.TrimSpace(m[1])] = amount
	}
	return summary
}

// itemsSegment slices the decoded text strictly between the end of the
// first "For:" line and the start of the first "Subtotal" line.
func itemsSegment(text string) (string, error) {
	start := segmentStart.FindStringIndex(text)
	if start == nil {
		return "", fmt.Errorf(`%w: no "For:" marker`, ErrItemSegment)
	}
	end := segmentEnd.FindStringIndex(text)
	if end == nil {
		return "", fmt.Errorf(`%w: no "Subtotal" marker`, ErrItemSegment)
	}
	if end[0] < start[1] {
		return "", fmt.Errorf("%w: markers out of order", ErrItemSegment)
	}
	return text[start[1]:end[0]], nil
}

// detectBullet picks the bullet variant used in segment, decided once
// per message and applied consistently within it. When both variants
// occur the higher occurrence count wins; ties keep the mojibake
// variant, which is the rendering this dialect usually ships with.
func detectBullet(segment string) string {
	best := bulletVariants[0]
	bestCount := strings.Count(segment, best)
	for _, v := range bulletVariants[1:] {
		if c := strings.Count(segment, v); c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// extractItems parses the repeated quantity/name/price line groups in
// the items segment. The name span may contain embedded line breaks;
// those are stripped before splitting name from modifiers on the
// segment's bullet variant.
func extractItems(text string) ([]OrderItem, error) {
	segment, err := itemsSegment(text)
	if err != nil {
		return nil, err
	}
	bullet := detectBullet(segment)

	var items []OrderItem
	for _, m := range itemPattern.FindAllStringSubmatch(segment, -1) {
		quantity, err := strconv.Atoi(strings.TrimSpace(m[1]))
		if err != nil {
			return nil, fmt.Errorf("parsing quantity %q: %w", m[1], err)
		}
		price, err := decimal.NewFromString(m[3])
		if err != nil {
			return nil, fmt.Errorf("parsing price %q: %w", m[3], err)
		}

		span := strings.ReplaceAll(strings.TrimSpace(m[2]), "\n", "")
		parts := strings.Split(span, bullet)
		modifiers := make([]string, 0, len(parts)-1)
		for _, mod := range parts[1:] {
			modifiers = append(modifiers, strings.TrimSpace(mod))
		}

		items = append(items, OrderItem{
			Quantity:  quantity,
			Name:      strings.TrimSpace(parts[0]),
			Modifiers: modifiers,
			Price:     price,
		})
	}
	return items, nil
}
