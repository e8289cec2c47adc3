package solution

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
)

// Order is the price order a Collection keeps.
type Order int

const (
	Unsorted Order = iota
	Ascending
	Descending
)

// ParseOrder parses "none", "asc" or "desc". Empty means none.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "none":
		return Unsorted, nil
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Unsorted, fmt.Errorf("invalid sort order %q: must be 'none', 'asc', or 'desc'", s)
	}
}

// Collection is an ordered list of solutions indexed by hash. The position
// of a solution is its id for export and removal. It is not safe for
// concurrent use.
type Collection struct {
	items  []*Solution
	byHash map[string]*Solution
	order  Order
}

// NewCollection returns an empty, unsorted collection.
func NewCollection() *Collection {
	return &Collection{byHash: make(map[string]*Solution)}
}

// Len returns the number of solutions.
func (c *Collection) Len() int {
	return len(c.items)
}

// All returns the solutions in order. The slice is a copy.
func (c *Collection) All() []*Solution {
	return slices.Clone(c.items)
}

// At returns the solution at index i.
func (c *Collection) At(i int) (*Solution, error) {
	if err := c.checkIndex(i); err != nil {
		return nil, err
	}
	return c.items[i], nil
}

// ByHash looks a solution up by its hash.
func (c *Collection) ByHash(hash string) (*Solution, bool) {
	s, ok := c.byHash[hash]
	return s, ok
}

// Order returns the price order currently kept.
func (c *Collection) Order() Order {
	return c.order
}

// Add inserts s. An unsorted collection appends; a sorted one inserts after
// every solution with an equal price. A solution whose hash is already
// present is rejected and the collection is left unchanged.
func (c *Collection) Add(s *Solution) (int, error) {
	if _, ok := c.byHash[s.hash]; ok {
		return -1, vehErrors.NewDuplicateName("solution", s.hash)
	}

	at := len(c.items)
	switch c.order {
	case Unsorted:
	case Ascending:
		at = sort.Search(len(c.items), func(i int) bool {
			return c.items[i].price.GreaterThan(s.price)
		})
	case Descending:
		at = sort.Search(len(c.items), func(i int) bool {
			return c.items[i].price.LessThan(s.price)
		})
	}

	c.items = slices.Insert(c.items, at, s)
	c.byHash[s.hash] = s
	return at, nil
}

// Remove deletes the solution at index i and returns it.
func (c *Collection) Remove(i int) (*Solution, error) {
	if err := c.checkIndex(i); err != nil {
		return nil, err
	}
	s := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.byHash, s.hash)
	return s, nil
}

// SortByPrice reorders the collection by price and keeps that order on
// later Adds. Solutions with equal prices keep their relative order.
// Unsorted only stops ordering future Adds.
func (c *Collection) SortByPrice(order Order) {
	c.order = order
	switch order {
	case Unsorted:
	case Ascending:
		slices.SortStableFunc(c.items, func(a, b *Solution) int { return a.price.Cmp(b.price) })
	case Descending:
		slices.SortStableFunc(c.items, func(a, b *Solution) int { return b.price.Cmp(a.price) })
	}
}

// Reconcile makes c hold the solutions of other. Solutions present in both
// keep their existing instance and relative order, solutions missing from
// other are dropped, and solutions only in other are added.
// It returns how many were added and removed.
func (c *Collection) Reconcile(other *Collection) (added, removed int) {
	kept := c.items[:0:0]
	for _, s := range c.items {
		if _, ok := other.byHash[s.hash]; ok {
			kept = append(kept, s)
			continue
		}
		delete(c.byHash, s.hash)
		removed++
	}
	c.items = kept

	for _, s := range other.items {
		if _, ok := c.byHash[s.hash]; ok {
			continue
		}
		if _, err := c.Add(s); err == nil {
			added++
		}
	}
	return added, removed
}

// TotalPrice sums the prices of every solution without rounding.
func (c *Collection) TotalPrice() decimal.Decimal {
	return Total(c.items)
}

// Total sums the prices of solutions without rounding.
func Total(solutions []*Solution) decimal.Decimal {
	total := decimal.Zero
	for _, s := range solutions {
		total = total.Add(s.price)
	}
	return total
}

func (c *Collection) checkIndex(i int) error {
	if i < 0 || i >= len(c.items) {
		return vehErrors.NewInvalidSelection(
			fmt.Sprintf("solution index %d out of range [0, %d)", i, len(c.items)), nil)
	}
	return nil
}
