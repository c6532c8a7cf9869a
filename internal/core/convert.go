package core

// convert.go re-encodes a SemanticRecord into a target layout.
//
// The semantic path walks the target fields in position order and fills each
// one from the canonical value bound to the same key, using the transform of
// its ConversionMapping. The legacy path ignores canonical keys and copies
// values by position with type coercion only; it is kept for comparison.

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConvertOptions tunes a conversion.
type ConvertOptions struct {
	UseSemantic bool
	Century     CenturyPolicy
}

// Convert re-encodes rec into the target version.
func (s *Snapshot) Convert(rec SemanticRecord, target string, opts ConvertOptions) ConversionResult {
	start := time.Now()
	res := ConversionResult{Method: MethodSemantic}
	if !opts.UseSemantic {
		res.Method = MethodLegacy
	}

	dst, ok := s.versions[target]
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrUnknownVersion, target)
		res.Duration = time.Since(start)
		return res
	}
	if rec.SourceVersion == target {
		res.Err = fmt.Errorf("%w (%s)", ErrSameVersion, target)
		res.Duration = time.Since(start)
		return res
	}

	var values []string
	var err error
	if opts.UseSemantic {
		values, err = s.convertSemantic(rec, dst, opts.Century, &res.Notes)
	} else {
		values, err = s.convertLegacy(rec, dst, &res.Notes)
	}

	if err == nil {
		s.guardSeparators(dst, values, &res.Notes)
		res.Converted = serialize(dst, values)
		res.Success = true
	} else {
		res.Err = err
	}
	res.Duration = time.Since(start)
	return res
}

func (s *Snapshot) convertSemantic(rec SemanticRecord, dst *compiledVersion, policy CenturyPolicy, notes *[]ConversionNote) ([]string, error) {
	note := func(kind NoteKind, field, format string, args ...any) {
		*notes = append(*notes, ConversionNote{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	transforms := make(map[CanonicalKey]Transform)
	if src, ok := s.versions[rec.SourceVersion]; ok {
		maps, err := s.Mappings(src.ID, dst.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range maps {
			transforms[m.Key] = m.Transform
		}
	}

	values := make([]string, len(dst.Fields))
	var missing *MandatoryFieldError
	blankNoted := make(map[CanonicalKey]bool)

	for i, f := range dst.Fields {
		if f.Encoding == EncFiller {
			values[i] = f.Default
			continue
		}

		v, present := rec.Fields[f.Canonical]
		if f.Canonical == "" || !present || v.Empty {
			values[i] = s.fallback(f, present, notes)
			if values[i] == "" && f.Mandatory && missing == nil {
				missing = &MandatoryFieldError{Version: dst.ID, Field: f.Name}
			}
			continue
		}

		if v.Warning != "" && !blankNoted[v.Key] {
			blankNoted[v.Key] = true
			kind := v.WarningKind
			if kind == "" {
				kind = NoteCoerced
			}
			note(kind, f.Name, "source %s: %s", v.Field, v.Warning)
		}

		out, err := s.encodeValue(v, f, transforms[f.Canonical], dst.ID, policy, notes)
		if err != nil {
			note(NoteLossy, f.Name, "%v, field dropped", err)
			values[i] = s.fallback(f, false, notes)
		} else {
			values[i] = out
		}
		if values[i] == "" && f.Mandatory && missing == nil {
			missing = &MandatoryFieldError{Version: dst.ID, Field: f.Name}
		}
	}

	// Source fields the target cannot hold, in source order.
	for _, v := range sortedValues(rec.Fields) {
		if len(dst.FieldsFor(v.Key)) == 0 && !v.Empty {
			note(NoteOmitted, v.Field, "no equivalent in %s, value %q omitted", dst.ID, v.Raw)
		}
	}

	if missing != nil {
		return nil, missing
	}
	return values, nil
}

// fallback returns the value used when a target field has no source value.
func (s *Snapshot) fallback(f FieldDefinition, present bool, notes *[]ConversionNote) string {
	if f.Default == "" {
		return ""
	}
	if !present {
		*notes = append(*notes, ConversionNote{
			Kind:    NoteDefaulted,
			Field:   f.Name,
			Message: fmt.Sprintf("not available in source, set to %q", f.Default),
		})
	}
	return f.Default
}

func (s *Snapshot) encodeValue(v SemanticValue, f FieldDefinition, tr Transform, dstVersion string, policy CenturyPolicy, notes *[]ConversionNote) (string, error) {
	note := func(kind NoteKind, format string, args ...any) {
		*notes = append(*notes, ConversionNote{Kind: kind, Field: f.Name, Message: fmt.Sprintf(format, args...)})
	}

	// Values that failed to decode can only travel as text.
	if !v.Valid {
		return coerceText(v.Raw, f, note)
	}

	switch tr {
	case TransformCoordinate:
		out, rounded, err := encodeCoordinate(v.Number, f)
		if err != nil {
			return "", err
		}
		if rounded {
			note(NoteRounded, "%s %.6f rounded to %s", v.Key, v.Number, out)
		}
		return out, nil

	case TransformDate:
		out, err := encodeDate(v.Date, f, policy)
		if err != nil {
			return "", err
		}
		if f.Encoding == EncDateDMY6 {
			note(NoteCentury, "year %d written with two digits", v.Date.Year())
		}
		return out, nil

	case TransformUnit, TransformIdentity:
		if encodingFamily(f.Encoding) == "number" {
			out, rounded, err := encodeNumber(v.Number, f)
			if err != nil {
				return "", err
			}
			if rounded {
				note(NoteRounded, "%g %s rounded to %s", v.Number, f.Unit, out)
			}
			return out, nil
		}
		return coerceText(v.Text, f, note)

	case TransformRing:
		return encodeRing(v.Text, f.Length)

	case TransformCodeRemap:
		return s.remapValue(v, f, dstVersion, note)

	default:
		return coerceText(v.Text, f, note)
	}
}

func (s *Snapshot) remapValue(v SemanticValue, f FieldDefinition, dstVersion string, note func(NoteKind, string, ...any)) (string, error) {
	table := s.table(f.Name, dstVersion)
	if len(table) == 0 {
		if len(v.Text) > f.Length {
			return "", fmt.Errorf("code %q does not fit %d characters", v.Text, f.Length)
		}
		return v.Text, nil
	}

	e, m := remapCode(v.Text, v.Meaning, table)
	switch m {
	case matchExact, matchIdentity:
		return e.Code, nil
	case matchNearest:
		note(NoteApproximated, "code %q (%s) approximated as %q (%s)", v.Text, orUnknown(v.Meaning), e.Code, orUnknown(e.Meaning))
		return e.Code, nil
	default:
		return "", fmt.Errorf("no equivalent for code %q (%s)", v.Text, orUnknown(v.Meaning))
	}
}

func orUnknown(meaning string) string {
	if meaning == "" {
		return "no meaning"
	}
	return meaning
}

// coerceText fits text into f without any semantic transform.
func coerceText(text string, f FieldDefinition, note func(NoteKind, string, ...any)) (string, error) {
	text = strings.TrimSpace(text)
	switch encodingFamily(f.Encoding) {
	case "number":
		n, err := parseNumber(text)
		if err != nil {
			return "", err
		}
		out, rounded, err := encodeNumber(n, f)
		if err != nil {
			return "", err
		}
		if rounded {
			note(NoteRounded, "%s rounded to %s", text, out)
		}
		return out, nil
	}
	if len(text) > f.Length {
		note(NoteTruncated, "%q truncated to %d characters", text, f.Length)
		return text[:f.Length], nil
	}
	return text, nil
}

func (s *Snapshot) convertLegacy(rec SemanticRecord, dst *compiledVersion, notes *[]ConversionNote) ([]string, error) {
	note := func(kind NoteKind, field, format string, args ...any) {
		*notes = append(*notes, ConversionNote{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	src := rec.Raw.Values
	values := make([]string, len(dst.Fields))
	var missing *MandatoryFieldError

	for i, f := range dst.Fields {
		if f.Encoding == EncFiller {
			values[i] = f.Default
			continue
		}
		var raw string
		if i < len(src) {
			raw = CleanValue(src[i])
		}
		if isNotRecorded(raw) {
			raw = ""
		}
		if raw != "" {
			out, err := coerceLegacy(raw, f)
			if err != nil {
				note(NoteCoerced, f.Name, "%v, field left empty", err)
				out = ""
			} else if out != raw {
				note(NoteCoerced, f.Name, "%q coerced to %q", raw, out)
			}
			values[i] = out
		}
		if values[i] == "" && f.Mandatory && missing == nil {
			missing = &MandatoryFieldError{Version: dst.ID, Field: f.Name}
		}
	}
	if len(src) > len(dst.Fields) {
		note(NoteOmitted, "", "%d trailing source values dropped", len(src)-len(dst.Fields))
	}

	if missing != nil {
		return nil, missing
	}
	return values, nil
}

// coerceLegacy converts by declared data type only.
func coerceLegacy(raw string, f FieldDefinition) (string, error) {
	switch f.DataType {
	case TypeInteger:
		n, err := parseNumber(raw)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%0*d", f.Length, int64(n))
		if len(out) > f.Length {
			return "", fmt.Errorf("value %s exceeds %d digits", raw, f.Length)
		}
		return out, nil
	case TypeFloat:
		n, err := parseNumber(raw)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%.*f", f.Decimals, n)
		if len(out) > f.Length {
			return "", fmt.Errorf("value %s exceeds %d characters", raw, f.Length)
		}
		return out, nil
	default:
		if len(raw) > f.Length {
			return raw[:f.Length], nil
		}
		return raw, nil
	}
}

// separatorSubstitute replaces separator characters found inside values.
const separatorSubstitute = "/"

// guardSeparators rewrites values so the serialized record splits back into
// the same fields: the target's separator, and any separator the parser would
// take for a mixed record, are replaced by separatorSubstitute.
func (s *Snapshot) guardSeparators(dst *compiledVersion, values []string, notes *[]ConversionNote) {
	if dst.Format.Layout != LayoutDelimited {
		return
	}
	own := dst.Format.Separator
	reserved := []string{own}
	for _, other := range s.separators {
		if other == own || (isSpaceSeparator(other) && !isSpaceSeparator(own)) {
			continue
		}
		reserved = append(reserved, other)
	}

	for i, val := range values {
		if dst.Fields[i].Encoding == EncFiller {
			continue
		}
		for _, sep := range reserved {
			if !strings.Contains(val, sep) {
				continue
			}
			val = strings.ReplaceAll(val, sep, separatorSubstitute)
			*notes = append(*notes, ConversionNote{
				Kind:    NoteCoerced,
				Field:   dst.Fields[i].Name,
				Message: fmt.Sprintf("separator %q inside the value replaced with %q", sep, separatorSubstitute),
			})
		}
		values[i] = val
	}
}

// serialize joins values per the target FormatSpec.
func serialize(v *compiledVersion, values []string) string {
	if v.Format.Layout == LayoutDelimited {
		if !isSpaceSeparator(v.Format.Separator) {
			return strings.Join(values, v.Format.Separator)
		}
		// Blank tokens would collapse into the separator; write "not recorded".
		out := make([]string, len(values))
		for i, val := range values {
			if val == "" {
				val = strings.Repeat("-", v.Fields[i].Length)
			}
			out[i] = val
		}
		return strings.Join(out, v.Format.Separator)
	}
	var b strings.Builder
	for i, f := range v.Fields {
		b.WriteString(pad(values[i], f.Length))
	}
	return b.String()
}

// IsMandatoryMissing reports whether err is a mandatory-field failure.
func IsMandatoryMissing(err error) bool {
	return errors.Is(err, ErrMandatoryFieldMissing)
}
