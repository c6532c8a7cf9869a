package core

import "time"

// DataType is the declared type of a field value.
type DataType string

const (
	TypeString  DataType = "string"
	TypeInteger DataType = "integer"
	TypeFloat   DataType = "float"
	TypeDate    DataType = "date"
	TypeCode    DataType = "code"
)

// SemanticDomain groups fields by theme across versions.
type SemanticDomain string

const (
	DomainIdentification SemanticDomain = "identification_marking"
	DomainSpecies        SemanticDomain = "species"
	DomainDemographics   SemanticDomain = "demographics"
	DomainTemporal       SemanticDomain = "temporal"
	DomainSpatial        SemanticDomain = "spatial"
	DomainBiometrics     SemanticDomain = "biometrics"
	DomainMethodology    SemanticDomain = "methodology"
)

// Layout is the overall shape of a record.
type Layout string

const (
	LayoutDelimited  Layout = "delimited"
	LayoutFixedWidth Layout = "fixed_width"
)

// Encoding describes how a field's value is written inside a record.
// It drives both extraction and re-encoding.
type Encoding string

const (
	EncPlain        Encoding = "plain"         // free text, '-' padded in fixed-width layouts
	EncDigits       Encoding = "digits"        // zero-padded integer
	EncScaled       Encoding = "scaled"        // zero-padded integer in units of Scale
	EncDecimal      Encoding = "decimal"       // decimal number with Decimals places
	EncRing         Encoding = "ring"          // ring identifier, dot padded
	EncCode         Encoding = "code"          // lookup-table code
	EncDateDMY8     Encoding = "date_dmy8"     // DDMMYYYY
	EncDateDMY6     Encoding = "date_dmy6"     // DDMMYY
	EncDateDay      Encoding = "date_day"      // DD part of a split date
	EncDateMonth    Encoding = "date_month"    // MM part of a split date
	EncDateYear     Encoding = "date_year"     // YYYY part of a split date
	EncTimeHHMM     Encoding = "time_hhmm"     // HHMM
	EncCoordDM      Encoding = "coord_dm"      // DDMMH / DDDMMH
	EncCoordDMT     Encoding = "coord_dmt"     // DDMMtH / DDDMMtH (tenths of minutes)
	EncCoordDMS     Encoding = "coord_dms"     // ±DDMMSS / ±DDDMMSS
	EncCoordDecimal Encoding = "coord_decimal" // signed decimal degrees
	EncFiller       Encoding = "filler"        // constant taken from Default
)

// Lossiness classifies how well a canonical field survives a conversion.
type Lossiness string

const (
	LossFull    Lossiness = "full"
	LossPartial Lossiness = "partial"
	LossLossy   Lossiness = "lossy"
	LossNone    Lossiness = "none"
)

// FieldDefinition describes one positional field of a version layout.
type FieldDefinition struct {
	Position       int            `json:"position"`
	Name           string         `json:"name"`
	DataType       DataType       `json:"data_type"`
	Length         int            `json:"length"`
	ValidValues    []string       `json:"valid_values,omitempty"`
	SemanticDomain SemanticDomain `json:"semantic_domain"`
	Description    string         `json:"description,omitempty"`

	Canonical CanonicalKey `json:"canonical,omitempty"` // empty for fillers and version-only fields
	Encoding  Encoding     `json:"encoding"`
	Unit      string       `json:"unit,omitempty"`
	Scale     float64      `json:"scale,omitempty"`    // raw integer * Scale = value in Unit
	Decimals  int          `json:"decimals,omitempty"` // for decimal encodings
	Mandatory bool         `json:"mandatory,omitempty"`
	Default   string       `json:"default,omitempty"` // filler constant or fallback value
}

// FormatSpec describes the overall record shape.
type FormatSpec struct {
	Layout    Layout `json:"layout"`
	Separator string `json:"separator,omitempty"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

// DiscriminantKind selects how a version-specific discriminant is evaluated.
type DiscriminantKind string

const (
	DiscRecordPattern DiscriminantKind = "record_pattern" // regexp against the whole record
	DiscFieldPattern  DiscriminantKind = "field_pattern"  // regexp against one parsed field
	DiscMinSeparators DiscriminantKind = "min_separators" // at least Count separators
	DiscContains      DiscriminantKind = "contains"       // record contains Pattern literally
)

// DiscriminantSpec is a version-specific structural test used by recognition.
type DiscriminantSpec struct {
	Name    string           `json:"name"`
	Kind    DiscriminantKind `json:"kind"`
	Field   string           `json:"field,omitempty"`
	Pattern string           `json:"pattern,omitempty"`
	Count   int              `json:"count,omitempty"`
	Weight  float64          `json:"weight"`
}

// EuringVersion is one supported record layout.
type EuringVersion struct {
	ID            string             `json:"id"`
	Year          int                `json:"year"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Fields        []FieldDefinition  `json:"fields"`
	Format        FormatSpec         `json:"format"`
	Discriminants []DiscriminantSpec `json:"discriminants,omitempty"`
}

// Field returns the field definition with the given name.
func (v *EuringVersion) Field(name string) (FieldDefinition, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldsFor returns the fields bound to a canonical key, in position order.
func (v *EuringVersion) FieldsFor(key CanonicalKey) []FieldDefinition {
	var out []FieldDefinition
	for _, f := range v.Fields {
		if f.Canonical == key && f.Encoding != EncFiller {
			out = append(out, f)
		}
	}
	return out
}

// RawRecord is a record split into positional values.
type RawRecord struct {
	Version string
	Values  []string
}

// SemanticValue is a typed, version-independent field value.
type SemanticValue struct {
	Key    CanonicalKey   `json:"key"`
	Domain SemanticDomain `json:"domain"`
	Type   DataType       `json:"type"`

	Raw     string    `json:"raw"`
	Text    string    `json:"text,omitempty"`
	Number  float64   `json:"number,omitempty"`
	Date    time.Time `json:"date,omitempty"`
	Meaning string    `json:"meaning,omitempty"`

	// Empty marks a value the source recorded as "not recorded".
	Empty bool `json:"empty,omitempty"`
	// Valid is false when the raw value could not be decoded.
	Valid bool `json:"valid"`

	Position    int      `json:"position"`
	Field       string   `json:"field"`
	Warning     string   `json:"warning,omitempty"`
	WarningKind NoteKind `json:"warning_kind,omitempty"`
}

// SemanticRecord maps canonical keys to values. A missing key means the
// source version cannot represent that field.
type SemanticRecord struct {
	SourceVersion string
	Fields        map[CanonicalKey]SemanticValue
	Raw           RawRecord
}

// Get returns the value for key.
func (r SemanticRecord) Get(key CanonicalKey) (SemanticValue, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Warnings returns field-level warnings in source position order.
func (r SemanticRecord) Warnings() []string {
	vals := sortedValues(r.Fields)
	var out []string
	for _, v := range vals {
		if v.Warning != "" {
			out = append(out, v.Field+": "+v.Warning)
		}
	}
	return out
}

// LookupEntry is one code and its meaning.
type LookupEntry struct {
	Code    string `json:"code"`
	Meaning string `json:"meaning"`
}

// TableSource tells where a lookup table came from.
type TableSource string

const (
	SourceCustom      TableSource = "custom"
	SourceDefault     TableSource = "default"
	SourceValidValues TableSource = "valid_values"
)

// LookupTable is the code table for one (field, version).
type LookupTable struct {
	Field   string        `json:"field"`
	Version string        `json:"version"`
	Source  TableSource   `json:"source"`
	Entries []LookupEntry `json:"values"`
}

// Find returns the entry for code.
func (t LookupTable) Find(code string) (LookupEntry, bool) {
	for _, e := range t.Entries {
		if e.Code == code {
			return e, true
		}
	}
	return LookupEntry{}, false
}

// DiscriminantScore is one discriminant's contribution for a version.
type DiscriminantScore struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

// VersionAnalysis is the score breakdown for one version.
type VersionAnalysis struct {
	Version       string              `json:"version"`
	Score         float64             `json:"score"`
	Discriminants []DiscriminantScore `json:"discriminants"`
	ParseError    string              `json:"parse_error,omitempty"`
}

// RecognitionResult is the outcome of recognizing a record.
type RecognitionResult struct {
	Version       string            `json:"version"`
	Confidence    float64           `json:"confidence"`
	LowConfidence bool              `json:"low_confidence"`
	Length        int               `json:"length"`
	Analysis      []VersionAnalysis `json:"discriminant_analysis,omitempty"`
}

// NoteKind classifies a conversion note.
type NoteKind string

const (
	NoteRounded         NoteKind = "rounded"
	NoteApproximated    NoteKind = "approximated"
	NoteLossy           NoteKind = "lossy"
	NoteDefaulted       NoteKind = "defaulted"
	NoteOmitted         NoteKind = "omitted"
	NoteUnsupportedCode NoteKind = "unsupported_code"
	NoteCentury         NoteKind = "century"
	NoteTruncated       NoteKind = "truncated"
	NoteCoerced         NoteKind = "coerced"
)

// ConversionNote is a human-readable remark about one field.
type ConversionNote struct {
	Kind    NoteKind `json:"kind"`
	Field   string   `json:"field"`
	Message string   `json:"message"`
}

func (n ConversionNote) String() string {
	if n.Field == "" {
		return n.Message
	}
	return n.Field + ": " + n.Message
}

// ConversionMethod names the conversion path used.
type ConversionMethod string

const (
	MethodSemantic ConversionMethod = "semantic"
	MethodLegacy   ConversionMethod = "legacy"
)

// ConversionResult is the outcome of converting one record.
type ConversionResult struct {
	Success   bool
	Converted string
	Method    ConversionMethod
	Notes     []ConversionNote
	Duration  time.Duration
	Err       error
}

// NoteStrings renders the notes in order.
func (r ConversionResult) NoteStrings() []string {
	out := make([]string, len(r.Notes))
	for i, n := range r.Notes {
		out[i] = n.String()
	}
	return out
}

// HasNote reports whether any note of kind mentions field.
func (r ConversionResult) HasNote(kind NoteKind, field string) bool {
	for _, n := range r.Notes {
		if n.Kind == kind && (field == "" || n.Field == field) {
			return true
		}
	}
	return false
}
