// Package cart implements the per-session shopping cart.
//
// Quantities are always clamped to the stock the catalog last reported, so a
// cart can never request more units than the shelf holds. The cart never
// mutates catalog data: what the screen shows as remaining stock is derived
// on read (API stock minus cart quantity).
package cart

import (
	"errors"
	"sync"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/money"
)

// ErrLocked is returned by mutating operations while a checkout is in
// flight. The submit sequence works from a frozen copy of the lines; edits
// during that window are rejected instead of silently lost.
var ErrLocked = errors.New("cart: locked during checkout")

// Line is one variant in the cart.
type Line struct {
	VariantID int64
	Name      string
	UnitPrice money.Cents
	Qty       int
	Stock     int // API stock when the line was last touched
}

// Subtotal is the line total in cents.
func (l Line) Subtotal() money.Cents {
	return l.UnitPrice.Mul(l.Qty)
}

// Cart holds the lines for one POS session. Safe for concurrent use.
type Cart struct {
	mu     sync.Mutex
	lines  map[int64]*Line
	order  []int64 // insertion order, for stable listings
	locked bool
}

func New() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// Increment adds one unit of v, clamped to its reported stock.
// Returns the resulting quantity.
func (c *Cart) Increment(v api.Variant) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return c.quantity(v.ID), ErrLocked
	}
	l := c.upsert(v)
	l.Qty = clamp(l.Qty+1, v.Stock)
	c.dropIfEmpty(v.ID)
	return l.Qty, nil
}

// Decrement removes one unit; the line disappears at zero.
// Returns the resulting quantity.
func (c *Cart) Decrement(id int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return c.quantity(id), ErrLocked
	}
	l, ok := c.lines[id]
	if !ok {
		return 0, nil
	}
	l.Qty--
	c.dropIfEmpty(id)
	if l.Qty < 0 {
		return 0, nil
	}
	return l.Qty, nil
}

// SetQuantity sets the absolute quantity for v, clamped to [0, stock].
// A resulting quantity of zero removes the line. Returns the clamped value.
func (c *Cart) SetQuantity(v api.Variant, qty int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return c.quantity(v.ID), ErrLocked
	}
	l := c.upsert(v)
	l.Qty = clamp(qty, v.Stock)
	c.dropIfEmpty(v.ID)
	return l.Qty, nil
}

// Remove deletes a line. Removing an absent line is a no-op.
func (c *Cart) Remove(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}
	c.delete(id)
	return nil
}

// Clear empties the cart. Checkout uses CommitClear instead, which also
// releases the lock.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}
	c.reset()
	return nil
}

// Quantity returns the current quantity for a variant, 0 when absent.
func (c *Cart) Quantity(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantity(id)
}

// DisplayStock is what the shelf should show: reported stock minus the
// units already in the cart, floored at zero.
func (c *Cart) DisplayStock(v api.Variant) int {
	remaining := v.Stock - c.Quantity(v.ID)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Total sums all line subtotals in cents.
func (c *Cart) Total() money.Cents {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total money.Cents
	for _, id := range c.order {
		total += c.lines[id].Subtotal()
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order) == 0
}

// Reconcile re-clamps every line against a fresh catalog snapshot and drops
// lines whose variant no longer exists. Prices and stock figures are
// refreshed from the snapshot.
func (c *Cart) Reconcile(snap *catalog.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}
	for _, id := range append([]int64(nil), c.order...) {
		v, ok := snap.Get(id)
		if !ok {
			c.delete(id)
			continue
		}
		l := c.lines[id]
		l.Name = v.Name()
		l.UnitPrice = money.FromFloat(v.Precio)
		l.Stock = v.Stock
		l.Qty = clamp(l.Qty, v.Stock)
		c.dropIfEmpty(id)
	}
	return nil
}

// ── Checkout coordination ────────────────────────────────────────────────────

// Freeze locks the cart and returns a frozen copy of its lines. The copy is
// what checkout submits; concurrent edits fail with ErrLocked until Unfreeze.
func (c *Cart) Freeze() ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return nil, ErrLocked
	}
	if len(c.order) == 0 {
		return nil, nil
	}
	c.locked = true
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out, nil
}

// Unfreeze unlocks the cart after a failed checkout, keeping its contents.
func (c *Cart) Unfreeze() {
	c.mu.Lock()
	c.locked = false
	c.mu.Unlock()
}

// CommitClear empties and unlocks the cart after a successful checkout.
func (c *Cart) CommitClear() {
	c.mu.Lock()
	c.reset()
	c.locked = false
	c.mu.Unlock()
}

// ── internals (callers hold c.mu) ────────────────────────────────────────────

func (c *Cart) upsert(v api.Variant) *Line {
	if l, ok := c.lines[v.ID]; ok {
		l.Stock = v.Stock
		l.UnitPrice = money.FromFloat(v.Precio)
		return l
	}
	l := &Line{
		VariantID: v.ID,
		Name:      v.Name(),
		UnitPrice: money.FromFloat(v.Precio),
		Stock:     v.Stock,
	}
	c.lines[v.ID] = l
	c.order = append(c.order, v.ID)
	return l
}

func (c *Cart) quantity(id int64) int {
	if l, ok := c.lines[id]; ok {
		return l.Qty
	}
	return 0
}

func (c *Cart) dropIfEmpty(id int64) {
	if l, ok := c.lines[id]; ok && l.Qty <= 0 {
		c.delete(id)
	}
}

func (c *Cart) delete(id int64) {
	if _, ok := c.lines[id]; !ok {
		return
	}
	delete(c.lines, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) reset() {
	c.lines = make(map[int64]*Line)
	c.order = nil
}

func clamp(qty, stock int) int {
	if stock < 0 {
		stock = 0
	}
	if qty > stock {
		return stock
	}
	if qty < 0 {
		return 0
	}
	return qty
}
