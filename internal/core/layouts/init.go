// Package layouts registers the built-in EURING versions with the core
// registry. Import it for its side effects.
package layouts

import "github.com/JonMunkholm/euring/internal/core"

type option func(*core.FieldDefinition)

func mandatory() option {
	return func(f *core.FieldDefinition) { f.Mandatory = true }
}

func unit(u string, scale float64) option {
	return func(f *core.FieldDefinition) {
		f.Unit = u
		f.Scale = scale
	}
}

func decimals(n int) option {
	return func(f *core.FieldDefinition) { f.Decimals = n }
}

func describe(s string) option {
	return func(f *core.FieldDefinition) { f.Description = s }
}

// field builds a definition bound to a canonical key. The domain follows the
// key.
func field(name string, length int, key core.CanonicalKey, enc core.Encoding, opts ...option) core.FieldDefinition {
	domain, _ := key.Domain()
	f := core.FieldDefinition{
		Name:           name,
		Length:         length,
		Canonical:      key,
		SemanticDomain: domain,
		Encoding:       enc,
		DataType:       dataType(enc),
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// filler is a constant the layout always carries.
func filler(name, value string, domain core.SemanticDomain) core.FieldDefinition {
	return core.FieldDefinition{
		Name:           name,
		Length:         len(value),
		SemanticDomain: domain,
		Encoding:       core.EncFiller,
		DataType:       core.TypeString,
		Default:        value,
	}
}

func dataType(enc core.Encoding) core.DataType {
	switch enc {
	case core.EncDigits, core.EncScaled, core.EncDateDay, core.EncDateMonth, core.EncDateYear:
		return core.TypeInteger
	case core.EncDecimal, core.EncCoordDM, core.EncCoordDMT, core.EncCoordDMS, core.EncCoordDecimal:
		return core.TypeFloat
	case core.EncCode:
		return core.TypeCode
	case core.EncDateDMY8, core.EncDateDMY6:
		return core.TypeDate
	default:
		return core.TypeString
	}
}

// register fills the valid values of code fields from their tables and hands
// the version to the core registry.
func register(v core.EuringVersion, tables map[string][]core.LookupEntry) {
	for i := range v.Fields {
		if t, ok := tables[v.Fields[i].Name]; ok {
			v.Fields[i].ValidValues = codes(t)
		}
	}
	core.Register(v, tables)
}
