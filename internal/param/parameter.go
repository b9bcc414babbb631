// Package param implements pydidas's Parameter and ParameterCollection: the
// typed, self-describing key/value unit that every context, plugin, and app
// configures itself through.
package param

import (
	"fmt"

	"github.com/pydidas/pydidas-go/internal/pderrors"
)

// Parameter is a single named, typed configuration value with a declared
// default, optional choice constraint, and optional-ness.
//
// Unlike the dynamically-typed original, Kind is fixed at construction and
// every SetValue call is typechecked against it immediately.
type Parameter struct {
	refKey   string
	name     string
	kind     Kind
	unit     string
	tooltip  string
	optional bool
	choices  []any
	value    any
	def      any
}

// Option configures a Parameter at construction time.
type Option func(*Parameter)

// WithUnit attaches a display unit (e.g. "m", "deg", "eV").
func WithUnit(unit string) Option { return func(p *Parameter) { p.unit = unit } }

// WithTooltip attaches a human-readable description.
func WithTooltip(tooltip string) Option { return func(p *Parameter) { p.tooltip = tooltip } }

// WithOptional marks the parameter as allowed to hold a nil value in
// addition to values of its declared Kind.
func WithOptional() Option { return func(p *Parameter) { p.optional = true } }

// WithChoices restricts accepted values to the given set. Kind should
// normally be Enum but this is not enforced, matching the original's
// looser "choices work with any type" behaviour.
func WithChoices(choices ...any) Option {
	return func(p *Parameter) { p.choices = choices }
}

// New constructs a Parameter. defaultValue must satisfy kind's type rule
// and, if choices are supplied via options, must be a member of it; a
// violation returns a *pderrors.SchemaError, matching the original's
// behaviour of refusing to construct a Parameter with an inconsistent
// default.
func New(refKey, name string, kind Kind, defaultValue any, opts ...Option) (*Parameter, error) {
	p := &Parameter{refKey: refKey, name: name, kind: kind}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(defaultValue); err != nil {
		return nil, err
	}
	p.def = defaultValue
	p.value = defaultValue
	return p, nil
}

// MustNew is like New but panics on error; intended for package-level
// default collections built from literal values that are known to be valid.
func MustNew(refKey, name string, kind Kind, defaultValue any, opts ...Option) *Parameter {
	p, err := New(refKey, name, kind, defaultValue, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parameter) validate(v any) error {
	if v == nil {
		if p.optional {
			return nil
		}
		return pderrors.NewSchemaError(p.refKey, "value is nil but parameter is not optional")
	}
	if !typeMatches(p.kind, v) {
		return pderrors.NewSchemaError(p.refKey,
			fmt.Sprintf("value %v of type %T does not match declared kind %s", v, v, p.kind))
	}
	if len(p.choices) > 0 && !p.isChoice(v) {
		return pderrors.NewSchemaError(p.refKey,
			fmt.Sprintf("value %v is not among the allowed choices %v", v, p.choices))
	}
	return nil
}

func (p *Parameter) isChoice(v any) bool {
	for _, c := range p.choices {
		if c == v {
			return true
		}
	}
	return false
}

// RefKey returns the parameter's collection-unique key.
func (p *Parameter) RefKey() string { return p.refKey }

// Name returns the parameter's display name.
func (p *Parameter) Name() string { return p.name }

// Kind returns the parameter's declared type.
func (p *Parameter) Kind() Kind { return p.kind }

// Unit returns the parameter's display unit, or "" if none was set.
func (p *Parameter) Unit() string { return p.unit }

// Tooltip returns the parameter's description, or "" if none was set.
func (p *Parameter) Tooltip() string { return p.tooltip }

// Optional reports whether a nil value is accepted.
func (p *Parameter) Optional() bool { return p.optional }

// Choices returns the accepted value set, or nil if unconstrained.
func (p *Parameter) Choices() []any { return p.choices }

// Value returns the parameter's current value.
func (p *Parameter) Value() any { return p.value }

// Default returns the parameter's declared default.
func (p *Parameter) Default() any { return p.def }

// SetValue typechecks and assigns a new value, returning a *pderrors.SchemaError
// if it violates Kind, Choices, or the Optional rule.
func (p *Parameter) SetValue(v any) error {
	if err := p.validate(v); err != nil {
		return err
	}
	p.value = v
	return nil
}

// RestoreDefault resets Value to Default.
func (p *Parameter) RestoreDefault() { p.value = p.def }

// IsDefault reports whether Value currently equals Default.
func (p *Parameter) IsDefault() bool { return p.value == p.def }

// Copy returns an independent copy of p, sharing no mutable state.
func (p *Parameter) Copy() *Parameter {
	cp := *p
	if p.choices != nil {
		cp.choices = append([]any(nil), p.choices...)
	}
	return &cp
}

// Dump returns the parameter as a 6-tuple: (refKey, kind, current value,
// optional, tooltip, unit). Name, default and choices are not part of the
// tuple; they round-trip through ParameterCollection's YAML form instead.
func (p *Parameter) Dump() [6]any {
	return [6]any{p.refKey, p.kind.String(), p.value, p.optional, p.tooltip, p.unit}
}

func (p *Parameter) String() string {
	return fmt.Sprintf("Parameter(%s=%v, kind=%s)", p.refKey, p.value, p.kind)
}
