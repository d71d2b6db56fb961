package scrape

import "github.com/shopspring/decimal"

// OrderItem is a single purchased item with its option modifiers.
// Modifiers preserve source order; duplicates are allowed.
type OrderItem struct {
	Quantity  int             `json:"qty"`
	Name      string          `json:"item"`
	Modifiers []string        `json:"modifiers"`
	Price     decimal.Decimal `json:"price"`
}

// Order is one purchase record extracted from a confirmation email.
// Scalar fields are empty when the source text had no match for them;
// absence is data, not an error. An Order is built once per message
// and never mutated afterwards.
type Order struct {
	MessageID       string                     `json:"message_id"`
	Date            string                     `json:"date"`
	StoreName       string                     `json:"store_name"`
	DeliveryAddress string                     `json:"delivery_address"`
	ETA             string                     `json:"eta"`
	Items           []OrderItem                `json:"items"`
	CostSummary     map[string]decimal.Decimal `json:"cost_summary"`
}

// Subtotal resolves the authoritative subtotal from the cost summary,
// preferring "Subtotal" over "Estimated Subtotal".
func (o Order) Subtotal() (decimal.Decimal, bool) {
	if v, ok := o.CostSummary["Subtotal"]; ok {
		return v, true
	}
	if v, ok := o.CostSummary["Estimated Subtotal"]; ok {
		return v, true
	}
	return decimal.Decimal{}, false
}

// ItemTotal is the sum of all item prices.
func (o Order) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price)
	}
	return total
}

// ModifierCount is the total number of modifiers across all items.
func (o Order) ModifierCount() int {
	count := 0
	for _, item := range o.Items {
		count += len(item.Modifiers)
	}
	return count
}
