package param

import (
	"fmt"

	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// Collection is an insertion-ordered set of Parameters keyed by RefKey.
// Every context, plugin, and app embeds one. Unlike a plain map, iteration
// order is preserved so that dumped/exported forms are stable and
// deterministic between runs.
type Collection struct {
	order []string
	byKey map[string]*Parameter
}

// NewCollection builds a Collection from zero or more Parameters. It panics
// on a duplicate RefKey, since that always indicates a programming error in
// a statically-declared parameter set.
func NewCollection(params ...*Parameter) *Collection {
	c := &Collection{byKey: make(map[string]*Parameter)}
	for _, p := range params {
		if err := c.Add(p); err != nil {
			panic(err)
		}
	}
	return c
}

// Add inserts p, failing with a *pderrors.FrameConfigError if RefKey already
// exists.
func (c *Collection) Add(p *Parameter) error {
	if _, exists := c.byKey[p.refKey]; exists {
		return pderrors.NewFrameConfigError(fmt.Sprintf("duplicate parameter refkey %q", p.refKey))
	}
	c.byKey[p.refKey] = p
	c.order = append(c.order, p.refKey)
	return nil
}

// AddMany inserts multiple Parameters, stopping at the first error.
func (c *Collection) AddMany(params ...*Parameter) error {
	for _, p := range params {
		if err := c.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the Parameter for refKey, or nil if absent.
func (c *Collection) Get(refKey string) *Parameter {
	return c.byKey[refKey]
}

// Has reports whether refKey is present.
func (c *Collection) Has(refKey string) bool {
	_, ok := c.byKey[refKey]
	return ok
}

// Value returns the current value of refKey's parameter, or nil if absent.
func (c *Collection) Value(refKey string) any {
	if p, ok := c.byKey[refKey]; ok {
		return p.Value()
	}
	return nil
}

// SetValue sets refKey's value, returning a *pderrors.FrameConfigError if
// refKey is unknown, or whatever typecheck error Parameter.SetValue returns.
func (c *Collection) SetValue(refKey string, v any) error {
	p, ok := c.byKey[refKey]
	if !ok {
		return pderrors.NewFrameConfigError(fmt.Sprintf("unknown parameter refkey %q", refKey))
	}
	return p.SetValue(v)
}

// Keys returns the RefKeys in insertion order.
func (c *Collection) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Values returns a snapshot map of RefKey to current value.
func (c *Collection) Values() map[string]any {
	out := make(map[string]any, len(c.order))
	for _, k := range c.order {
		out[k] = c.byKey[k].Value()
	}
	return out
}

// Len returns the number of parameters in the collection.
func (c *Collection) Len() int { return len(c.order) }

// RestoreDefaults resets every parameter to its declared default.
func (c *Collection) RestoreDefaults() {
	for _, k := range c.order {
		c.byKey[k].RestoreDefault()
	}
}

// Copy returns a deep copy: every contained Parameter is independently
// copied, so mutating the copy's values never affects c.
func (c *Collection) Copy() *Collection {
	cp := &Collection{
		order: append([]string(nil), c.order...),
		byKey: make(map[string]*Parameter, len(c.byKey)),
	}
	for k, p := range c.byKey {
		cp.byKey[k] = p.Copy()
	}
	return cp
}

// Merge copies every parameter from other into c, failing with a
// *pderrors.FrameConfigError at the first RefKey collision and leaving c
// partially modified up to that point — callers that need atomicity should
// Copy first and merge into the copy.
func (c *Collection) Merge(other *Collection) error {
	for _, k := range other.order {
		if err := c.Add(other.byKey[k]); err != nil {
			return err
		}
	}
	return nil
}

// Each calls fn for every parameter in insertion order.
func (c *Collection) Each(fn func(*Parameter)) {
	for _, k := range c.order {
		fn(c.byKey[k])
	}
}
