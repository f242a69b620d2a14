package model

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
)

// Order defines how the children of a directory are ordered before they are
// emitted.
type Order int

const (
	// OrderOS keeps whatever order the filesystem returns.
	OrderOS Order = iota
	// OrderLexical sorts by name, byte-wise.
	OrderLexical
	// OrderNatural sorts by name, treating digit runs as numbers.
	OrderNatural
)

func (o Order) String() string {
	switch o {
	case OrderOS:
		return "os"
	case OrderLexical:
		return "lexical"
	case OrderNatural:
		return "natural"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder parses the String form of an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "os":
		return OrderOS, nil
	case "lexical", "sorted":
		return OrderLexical, nil
	case "natural":
		return OrderNatural, nil
	}
	return OrderOS, fmt.Errorf("unknown order %q", s)
}

// Less returns the name comparison for the order, or nil for OrderOS.
func (o Order) Less() func(a, b string) bool {
	switch o {
	case OrderLexical:
		return func(a, b string) bool { return a < b }
	case OrderNatural:
		return natural.Less
	default:
		return nil
	}
}

// SortNames sorts names in place according to the order.
func SortNames(names []string, o Order) {
	less := o.Less()
	if less == nil {
		return
	}
	sort.SliceStable(names, func(i, j int) bool {
		return less(names[i], names[j])
	})
}
