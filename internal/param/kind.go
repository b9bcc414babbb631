package param

// Kind is the tagged-variant type for a Parameter's declared datatype,
// replacing the dynamic-typing Parameter pattern of the original
// implementation with an explicit enumeration (per the "dynamic typing in
// parameters" redesign note).
type Kind int

const (
	// Unconstrained accepts any value; typecheck always succeeds.
	Unconstrained Kind = iota
	// Integral accepts any Go integer value (int, int8, ..., uint64).
	Integral
	// Real accepts any Go floating-point value (float32, float64) as well
	// as integers, mirroring numbers.Real accepting numbers.Integral.
	Real
	// Text accepts string values.
	Text
	// Path accepts string values that denote a filesystem path.
	Path
	// Hdf5Key accepts string values that denote a location inside an HDF5
	// file (e.g. "/entry/data/data").
	Hdf5Key
	// Boolean accepts bool values.
	Boolean
	// Enum accepts a value drawn from Parameter.Choices.
	Enum
)

// String returns the canonical lower_snake_case name of the Kind, used in
// Parameter.Dump and in serialized form.
func (k Kind) String() string {
	switch k {
	case Integral:
		return "integral"
	case Real:
		return "real"
	case Text:
		return "text"
	case Path:
		return "path"
	case Hdf5Key:
		return "hdf5_key"
	case Boolean:
		return "boolean"
	case Enum:
		return "enum"
	default:
		return "unconstrained"
	}
}

// typeMatches reports whether v's Go runtime type satisfies kind, ignoring
// the optional/choices rules (those are layered on top by Parameter).
func typeMatches(kind Kind, v any) bool {
	switch kind {
	case Unconstrained:
		return true
	case Integral:
		return isIntegral(v)
	case Real:
		return isIntegral(v) || isReal(v)
	case Text, Path, Hdf5Key:
		_, ok := v.(string)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Enum:
		// Enum membership is checked separately against Choices; at the
		// type level any comparable value is acceptable.
		return true
	default:
		return false
	}
}

func isIntegral(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func isReal(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}
