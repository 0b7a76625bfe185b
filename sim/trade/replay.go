package trade

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ReplayGenerator re-feeds a recorded demand dataset: JSON Lines, one
// Order per line, as written by WriteOrders. Lets a statistical run be
// replayed exactly against different policies or configurations.
type ReplayGenerator struct {
	orders []Order
}

// NewReplayFile loads a recorded demand dataset from disk.
func NewReplayFile(path string) (*ReplayGenerator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening demand dataset: %w", err)
	}
	defer f.Close()
	return NewReplay(f)
}

// NewReplay loads a recorded demand dataset from a reader. Orders are
// validated on the way in: a malformed order fails the load here rather
// than aborting the run it is injected into.
func NewReplay(r io.Reader) (*ReplayGenerator, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var orders []Order
	seen := make(map[string]bool)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var o Order
		if err := json.Unmarshal([]byte(text), &o); err != nil {
			return nil, fmt.Errorf("demand dataset line %d: %w", line, err)
		}
		if o.ID == "" {
			return nil, fmt.Errorf("demand dataset line %d: order has no id", line)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("demand dataset line %d: duplicate order id %q", line, o.ID)
		}
		seen[o.ID] = true
		if err := checkOrder(o); err != nil {
			return nil, fmt.Errorf("demand dataset line %d: %w", line, err)
		}
		orders = append(orders, o)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Available != orders[j].Available {
			return orders[i].Available < orders[j].Available
		}
		return orders[i].ID < orders[j].ID
	})
	return &ReplayGenerator{orders: orders}, nil
}

// Generate returns the recorded orders inside the horizon.
func (g *ReplayGenerator) Generate(horizon int64) ([]Order, error) {
	out := make([]Order, 0, len(g.orders))
	for _, o := range g.orders {
		if o.Available < horizon {
			out = append(out, o)
		}
	}
	return out, nil
}

// WriteOrders records a generated order stream as a JSON Lines dataset
// suitable for NewReplay.
func WriteOrders(w io.Writer, orders []Order) error {
	bw := bufio.NewWriter(w)
	for _, o := range orders {
		b, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encoding order %s: %w", o.ID, err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}
