package core

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Parse splits raw into positional values per the version layout.
// It never panics on malformed input; structural problems return a *FormatError.
func (s *Snapshot) Parse(raw, version string) (RawRecord, error) {
	cv, ok := s.versions[version]
	if !ok {
		return RawRecord{}, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	return parseWith(cv, raw, s.separators)
}

func parseWith(cv *compiledVersion, raw string, separators []string) (RawRecord, error) {
	switch cv.Format.Layout {
	case LayoutDelimited:
		return parseDelimited(cv, raw, separators)
	case LayoutFixedWidth:
		return parseFixedWidth(cv, raw)
	default:
		return RawRecord{}, &FormatError{Version: cv.ID, Detail: fmt.Sprintf("unsupported layout %q", cv.Format.Layout)}
	}
}

func parseDelimited(cv *compiledVersion, raw string, separators []string) (RawRecord, error) {
	line := strings.TrimSpace(raw)
	sep := cv.Format.Separator

	if other, ok := mixedSeparator(line, sep, separators); ok {
		return RawRecord{}, &FormatError{
			Version: cv.ID,
			Kind:    FormatMixedDelimiter,
			Detail:  fmt.Sprintf("found %q alongside %q", other, sep),
		}
	}

	values := strings.Split(line, sep)
	if len(values) != len(cv.Fields) {
		return RawRecord{}, &FormatError{
			Version:  cv.ID,
			Kind:     FormatFieldCount,
			Expected: len(cv.Fields),
			Actual:   len(values),
		}
	}
	return RawRecord{Version: cv.ID, Values: values}, nil
}

// mixedSeparator reports the first separator of another delimited layout
// present in line. Whitespace does not conflict with a non-whitespace
// separator since free-text fields may contain spaces.
func mixedSeparator(line, own string, separators []string) (string, bool) {
	ownSpace := isSpaceSeparator(own)
	for _, other := range separators {
		if other == own {
			continue
		}
		if isSpaceSeparator(other) && !ownSpace {
			continue
		}
		if strings.Contains(line, other) {
			return other, true
		}
	}
	return "", false
}

func isSpaceSeparator(sep string) bool {
	return sep != "" && strings.IndexFunc(sep, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

func parseFixedWidth(cv *compiledVersion, raw string) (RawRecord, error) {
	line := strings.TrimRight(raw, "\r\n")
	n := len(line)

	total := 0
	for _, f := range cv.Fields {
		total += f.Length
	}

	if n < cv.Format.MinLength || n > cv.Format.MaxLength || n < total {
		return RawRecord{}, &FormatError{
			Version:  cv.ID,
			Kind:     FormatLength,
			Expected: total,
			Actual:   n,
			Detail:   lengthBounds(cv.Format),
		}
	}

	values := make([]string, len(cv.Fields))
	pos := 0
	for i, f := range cv.Fields {
		values[i] = line[pos : pos+f.Length]
		pos += f.Length
	}
	return RawRecord{Version: cv.ID, Values: values}, nil
}

func lengthBounds(f FormatSpec) string {
	if f.MinLength == f.MaxLength {
		return fmt.Sprintf("%d characters", f.MinLength)
	}
	return fmt.Sprintf("%d-%d characters", f.MinLength, f.MaxLength)
}

func sortFields(fields []FieldDefinition) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Position < fields[j].Position })
}
