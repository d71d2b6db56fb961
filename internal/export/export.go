package export

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/grubmail/grubmail/internal/scrape"
)

// ModifierSeparator joins an item's modifiers into one exported cell.
const ModifierSeparator = " | "

// scalar columns exported for every order, in output order.
var orderColumns = []string{"message_id", "date", "store_name", "delivery_address", "eta"}

var itemColumns = []string{"order_message_id", "qty", "item", "modifiers", "price"}

// Exporter writes the two order tables to a destination.
type Exporter interface {
	// Export writes the orders table and the order-items table.
	Export(ctx context.Context, orders []scrape.Order) error
}

// OrdersTable flattens orders into one row per order, with the
// cost-summary labels appended as extra columns. The label set is the
// union across all orders, sorted for a stable header; orders missing
// a label get "0" in that cell and missing scalars stay empty.
func OrdersTable(orders []scrape.Order) (header []string, rows [][]string) {
	labelSet := make(map[string]struct{})
	for _, o := range orders {
		for label := range o.CostSummary {
			labelSet[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	header = append(append([]string{}, orderColumns...), labels...)
	rows = make([][]string, 0, len(orders))
	for _, o := range orders {
		row := []string{o.MessageID, o.Date, o.StoreName, o.DeliveryAddress, o.ETA}
		for _, label := range labels {
			if amount, ok := o.CostSummary[label]; ok {
				row = append(row, amount.StringFixed(2))
			} else {
				row = append(row, "0")
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

// ItemsTable flattens orders into one row per item, modifiers joined
// with ModifierSeparator.
func ItemsTable(orders []scrape.Order) (header []string, rows [][]string) {
	header = append([]string{}, itemColumns...)
	for _, o := range orders {
		for _, item := range o.Items {
			rows = append(rows, []string{
				o.MessageID,
				strconv.Itoa(item.Quantity),
				item.Name,
				strings.Join(item.Modifiers, ModifierSeparator),
				item.Price.StringFixed(2),
			})
		}
	}
	return header, rows
}
