package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grubmail/grubmail/internal/scrape"
)

// CSV writes the order tables as orders.csv and order_items.csv in a
// local directory.
type CSV struct {
	dir string
}

// NewCSV creates a CSV exporter, creating the output directory if it
// does not exist.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &CSV{dir: dir}, nil
}

// Export writes both tables, replacing any previous run's output.
func (c *CSV) Export(_ context.Context, orders []scrape.Order) error {
	header, rows := OrdersTable(orders)
	if err := c.writeFile("orders.csv", header, rows); err != nil {
		return err
	}

	header, rows = ItemsTable(orders)
	return c.writeFile("order_items.csv", header, rows)
}

func (c *CSV) writeFile(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(c.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s rows: %w", name, err)
	}
	return nil
}
