package param

// yamlEntry is the on-disk form of a single Parameter, used when exporting
// or restoring a Collection (e.g. inside a WorkflowTree export or a qsettings
// snapshot). Kind and Choices round-trip as strings/interfaces since
// gopkg.in/yaml.v3 has no notion of the Kind enum.
type yamlEntry struct {
	RefKey   string `yaml:"ref_key"`
	Name     string `yaml:"name,omitempty"`
	Kind     string `yaml:"kind"`
	Value    any    `yaml:"value"`
	Default  any    `yaml:"default"`
	Unit     string `yaml:"unit,omitempty"`
	Tooltip  string `yaml:"tooltip,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Choices  []any  `yaml:"choices,omitempty"`
}

func kindFromString(s string) Kind {
	switch s {
	case "integral":
		return Integral
	case "real":
		return Real
	case "text":
		return Text
	case "path":
		return Path
	case "hdf5_key":
		return Hdf5Key
	case "boolean":
		return Boolean
	case "enum":
		return Enum
	default:
		return Unconstrained
	}
}

// MarshalYAML implements yaml.Marshaler for a single Parameter.
func (p *Parameter) MarshalYAML() (any, error) {
	return yamlEntry{
		RefKey:   p.refKey,
		Name:     p.name,
		Kind:     p.kind.String(),
		Value:    p.value,
		Default:  p.def,
		Unit:     p.unit,
		Tooltip:  p.tooltip,
		Optional: p.optional,
		Choices:  p.choices,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for a single Parameter.
func (p *Parameter) UnmarshalYAML(unmarshal func(any) error) error {
	var e yamlEntry
	if err := unmarshal(&e); err != nil {
		return err
	}
	p.refKey = e.RefKey
	p.name = e.Name
	p.kind = kindFromString(e.Kind)
	p.value = e.Value
	p.def = e.Default
	p.unit = e.Unit
	p.tooltip = e.Tooltip
	p.optional = e.Optional
	p.choices = e.Choices
	return nil
}

// MarshalYAML implements yaml.Marshaler for a Collection, emitting
// parameters as a list in insertion order so round-tripped files stay
// readable and diffable.
func (c *Collection) MarshalYAML() (any, error) {
	out := make([]*Parameter, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for a Collection.
func (c *Collection) UnmarshalYAML(unmarshal func(any) error) error {
	var entries []*Parameter
	if err := unmarshal(&entries); err != nil {
		return err
	}
	c.order = nil
	c.byKey = make(map[string]*Parameter, len(entries))
	for _, p := range entries {
		c.order = append(c.order, p.refKey)
		c.byKey[p.refKey] = p
	}
	return nil
}
