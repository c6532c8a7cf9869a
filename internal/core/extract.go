package core

import (
	"fmt"
	"strings"
)

// Extract maps a parsed record into a version-independent SemanticRecord.
// Invalid values never abort extraction: the raw text is kept and the value
// carries a field-level warning.
func (s *Snapshot) Extract(rec RawRecord, policy CenturyPolicy) (SemanticRecord, error) {
	cv, ok := s.versions[rec.Version]
	if !ok {
		return SemanticRecord{}, fmt.Errorf("%w: %s", ErrUnknownVersion, rec.Version)
	}
	if len(rec.Values) != len(cv.Fields) {
		return SemanticRecord{}, &FormatError{
			Version:  cv.ID,
			Kind:     FormatFieldCount,
			Expected: len(cv.Fields),
			Actual:   len(rec.Values),
		}
	}

	out := SemanticRecord{
		SourceVersion: cv.ID,
		Fields:        make(map[CanonicalKey]SemanticValue, len(cv.Fields)),
		Raw:           rec,
	}
	parts := make(map[CanonicalKey]*dateParts)

	for i, f := range cv.Fields {
		if f.Encoding == EncFiller || f.Canonical == "" {
			continue
		}
		raw := CleanValue(rec.Values[i])

		if isDatePart(f.Encoding) {
			p, ok := parts[f.Canonical]
			if !ok {
				p = &dateParts{}
				parts[f.Canonical] = p
			}
			p.add(f, raw)
			continue
		}

		out.Fields[f.Canonical] = s.extractValue(cv, f, raw, policy)
	}

	for key, p := range parts {
		out.Fields[key] = assembleDate(key, p)
	}
	return out, nil
}

func newValue(f FieldDefinition, raw string) SemanticValue {
	return SemanticValue{
		Key:      f.Canonical,
		Domain:   f.SemanticDomain,
		Type:     f.DataType,
		Raw:      raw,
		Position: f.Position,
		Field:    f.Name,
		Valid:    true,
	}
}

func (v *SemanticValue) invalid(kind NoteKind, format string, args ...any) {
	v.Valid = false
	v.Warning = fmt.Sprintf(format, args...)
	v.WarningKind = kind
}

func (s *Snapshot) extractValue(cv *compiledVersion, f FieldDefinition, raw string, policy CenturyPolicy) SemanticValue {
	v := newValue(f, raw)

	if f.Encoding == EncPlain {
		raw = strings.TrimRight(raw, "-")
		v.Raw = raw
	}
	if isNotRecorded(raw) {
		v.Empty = true
		return v
	}

	switch f.Encoding {
	case EncPlain:
		v.Text = raw

	case EncRing:
		v.Text = normalizeRing(raw)

	case EncDigits, EncScaled, EncDecimal:
		n, err := decodeNumber(raw, f)
		if err != nil {
			v.invalid(NoteCoerced, "%v, raw value kept", err)
			v.Text = raw
			return v
		}
		v.Number = n
		v.Text = raw

	case EncCode:
		v.Text = raw
		table := s.table(f.Name, cv.ID)
		if len(table) == 0 {
			return v
		}
		for _, e := range table {
			if e.Code == raw {
				v.Meaning = e.Meaning
				return v
			}
		}
		v.Warning = fmt.Sprintf("unsupported code %q, passed through", raw)
		v.WarningKind = NoteUnsupportedCode

	case EncDateDMY8, EncDateDMY6:
		t, inferred, err := decodeDate(raw, f, policy)
		if err != nil {
			v.invalid(NoteCoerced, "%v, raw value kept", err)
			v.Text = raw
			return v
		}
		v.Date = t
		v.Text = t.Format("2006-01-02")
		if inferred {
			v.Warning = fmt.Sprintf("century inferred, read as %d", t.Year())
			v.WarningKind = NoteCentury
		}

	case EncTimeHHMM:
		v.Text = raw
		if !validTime(raw) {
			v.invalid(NoteCoerced, "invalid time %q, raw value kept", raw)
		}

	case EncCoordDM, EncCoordDMT, EncCoordDMS, EncCoordDecimal:
		deg, err := decodeCoordinate(raw, f)
		if err != nil {
			v.invalid(NoteCoerced, "%v, raw value kept", err)
			v.Text = raw
			return v
		}
		v.Type = TypeFloat
		v.Number = deg
		v.Text = raw

	default:
		v.Text = raw
	}
	return v
}

func assembleDate(key CanonicalKey, p *dateParts) SemanticValue {
	f := p.first
	v := newValue(f, strings.Join(p.raw[:], "/"))
	v.Key = key
	v.Type = TypeDate
	if p.empty() {
		v.Empty = true
		return v
	}
	t, err := p.date()
	if err != nil {
		v.invalid(NoteCoerced, "%v, raw value kept", err)
		v.Text = v.Raw
		return v
	}
	v.Date = t
	v.Text = t.Format("2006-01-02")
	return v
}
