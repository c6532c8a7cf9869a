package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Transform names the value transform a mapping applies.
type Transform string

const (
	TransformIdentity   Transform = "identity"
	TransformRing       Transform = "ring"
	TransformUnit       Transform = "unit"
	TransformCoordinate Transform = "coordinate"
	TransformDate       Transform = "date"
	TransformCodeRemap  Transform = "code_remap"
	TransformNone       Transform = "none"
)

// ConversionMapping describes how one canonical field travels from a source
// version into a target version.
type ConversionMapping struct {
	Key          CanonicalKey   `json:"key"`
	Domain       SemanticDomain `json:"domain"`
	SourceFields []string       `json:"source_fields"`
	TargetFields []string       `json:"target_fields,omitempty"`
	Transform    Transform      `json:"transform"`
	Lossiness    Lossiness      `json:"lossiness"`
}

// Compatibility summarizes a whole version pair.
type Compatibility string

const (
	CompatFull    Compatibility = "full"
	CompatPartial Compatibility = "partial"
	CompatLimited Compatibility = "limited"
	CompatNone    Compatibility = "none"
)

// MatrixCell is the conversion summary for one source/target pair.
type MatrixCell struct {
	Full          int           `json:"full"`
	Partial       int           `json:"partial"`
	Lossy         int           `json:"lossy"`
	None          int           `json:"none"`
	Compatibility Compatibility `json:"compatibility"`

	Domains map[SemanticDomain]DomainCell `json:"domains,omitempty"`
}

// DomainCell is the part of a MatrixCell covering one semantic domain.
// LossyFields lists the keys whose values can be lost (lossy or no
// equivalent), in source position order.
type DomainCell struct {
	Full          int           `json:"full"`
	Partial       int           `json:"partial"`
	Lossy         int           `json:"lossy"`
	None          int           `json:"none"`
	Compatibility Compatibility `json:"compatibility"`
	LossyFields   []string      `json:"lossy_fields,omitempty"`
}

// Mappings returns the mapping of every canonical field of source into
// target, in source position order.
func (s *Snapshot) Mappings(source, target string) ([]ConversionMapping, error) {
	src, ok := s.versions[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, source)
	}
	dst, ok := s.versions[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, target)
	}

	var out []ConversionMapping
	seen := make(map[CanonicalKey]bool)
	for _, f := range src.Fields {
		if f.Encoding == EncFiller || f.Canonical == "" || seen[f.Canonical] {
			continue
		}
		seen[f.Canonical] = true

		srcFields := src.FieldsFor(f.Canonical)
		dstFields := dst.FieldsFor(f.Canonical)
		m := ConversionMapping{
			Key:          f.Canonical,
			Domain:       f.SemanticDomain,
			SourceFields: fieldNames(srcFields),
			TargetFields: fieldNames(dstFields),
		}
		if len(dstFields) == 0 {
			m.Transform = TransformNone
			m.Lossiness = LossNone
		} else {
			m.Transform = chooseTransform(srcFields[0], dstFields[0])
			m.Lossiness = s.classify(src.ID, dst.ID, srcFields[0], dstFields[0])
		}
		out = append(out, m)
	}
	return out, nil
}

// Matrix summarizes Mappings for every ordered pair of distinct versions.
func (s *Snapshot) Matrix() map[string]map[string]MatrixCell {
	out := make(map[string]map[string]MatrixCell, len(s.order))
	for _, a := range s.order {
		row := make(map[string]MatrixCell, len(s.order)-1)
		for _, b := range s.order {
			if a == b {
				continue
			}
			maps, err := s.Mappings(a, b)
			if err != nil {
				continue
			}
			row[b] = Summarize(maps)
		}
		out[a] = row
	}
	return out
}

// Summarize counts maps by lossiness, overall and per semantic domain.
func Summarize(maps []ConversionMapping) MatrixCell {
	var c MatrixCell
	byDomain := make(map[SemanticDomain][]ConversionMapping)
	for _, m := range maps {
		byDomain[m.Domain] = append(byDomain[m.Domain], m)
	}
	d := summarizeDomain(maps)
	c.Full, c.Partial, c.Lossy, c.None, c.Compatibility = d.Full, d.Partial, d.Lossy, d.None, d.Compatibility

	if len(byDomain) > 0 {
		c.Domains = make(map[SemanticDomain]DomainCell, len(byDomain))
		for domain, ms := range byDomain {
			c.Domains[domain] = summarizeDomain(ms)
		}
	}
	return c
}

func summarizeDomain(maps []ConversionMapping) DomainCell {
	var c DomainCell
	for _, m := range maps {
		switch m.Lossiness {
		case LossFull:
			c.Full++
		case LossPartial:
			c.Partial++
		case LossLossy:
			c.Lossy++
			c.LossyFields = append(c.LossyFields, string(m.Key))
		default:
			c.None++
			c.LossyFields = append(c.LossyFields, string(m.Key))
		}
	}
	c.Compatibility = compatibility(c.Full, c.Partial, len(maps))
	return c
}

// compatibility grades a pair: full when every field is full, partial when
// at least 60% survives (partial fields count half), limited when anything
// survives.
func compatibility(full, partial, total int) Compatibility {
	if total == 0 {
		return CompatNone
	}
	ratio := (float64(full) + 0.5*float64(partial)) / float64(total)
	switch {
	case full == total:
		return CompatFull
	case ratio >= 0.6:
		return CompatPartial
	case ratio > 0:
		return CompatLimited
	default:
		return CompatNone
	}
}

func fieldNames(fs []FieldDefinition) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func encodingFamily(e Encoding) string {
	switch e {
	case EncDigits, EncScaled, EncDecimal:
		return "number"
	case EncDateDMY8, EncDateDMY6, EncDateDay, EncDateMonth, EncDateYear:
		return "date"
	case EncCoordDM, EncCoordDMT, EncCoordDMS, EncCoordDecimal:
		return "coordinate"
	default:
		return string(e)
	}
}

func chooseTransform(src, dst FieldDefinition) Transform {
	switch encodingFamily(dst.Encoding) {
	case "number":
		if src.Encoding == dst.Encoding && numericScale(src) == numericScale(dst) && src.Unit == dst.Unit {
			return TransformIdentity
		}
		return TransformUnit
	case "date":
		return TransformDate
	case "coordinate":
		return TransformCoordinate
	case string(EncCode):
		return TransformCodeRemap
	case string(EncRing):
		return TransformRing
	default:
		return TransformIdentity
	}
}

func (s *Snapshot) classify(srcVersion, dstVersion string, src, dst FieldDefinition) Lossiness {
	const eps = 1e-9

	if encodingFamily(src.Encoding) != encodingFamily(dst.Encoding) {
		return LossPartial
	}
	switch encodingFamily(dst.Encoding) {
	case "coordinate":
		if coordResolution(dst) <= coordResolution(src)+eps {
			return LossFull
		}
		return LossPartial

	case "date":
		if (src.Encoding == EncDateDMY6) != (dst.Encoding == EncDateDMY6) {
			return LossPartial
		}
		return LossFull

	case "number":
		if numericScale(dst) <= numericScale(src)+eps && numericCapacity(dst)+eps >= numericCapacity(src) {
			return LossFull
		}
		return LossPartial

	case string(EncCode):
		srcTable := s.table(src.Name, srcVersion)
		dstTable := s.table(dst.Name, dstVersion)
		if len(srcTable) == 0 || len(dstTable) == 0 {
			if dst.Length >= src.Length && len(dstTable) == 0 {
				return LossFull
			}
			return LossPartial
		}
		exact, mapped := 0, 0
		for _, e := range srcTable {
			_, m := remapCode(e.Code, e.Meaning, dstTable)
			switch m {
			case matchExact, matchIdentity:
				exact++
				mapped++
			case matchNearest:
				mapped++
			}
		}
		switch {
		case exact == len(srcTable):
			return LossFull
		case mapped > 0:
			return LossPartial
		default:
			return LossLossy
		}

	default:
		if dst.Length >= src.Length {
			return LossFull
		}
		return LossPartial
	}
}

type remapMatch int

const (
	matchNone remapMatch = iota
	matchExact
	matchIdentity
	matchNearest
)

func fold(s string) string {
	// A Caser is stateful; a fresh one keeps this safe for concurrent callers.
	return cases.Fold().String(strings.TrimSpace(s))
}

// remapCode finds the target entry equivalent to a source code. Matching
// prefers an equal meaning, then the same code when either meaning is
// unknown, then a containing meaning, then a shared code prefix.
func remapCode(code, meaning string, target []LookupEntry) (LookupEntry, remapMatch) {
	fm := fold(meaning)

	if fm != "" {
		for _, e := range target {
			if fold(e.Meaning) == fm {
				return e, matchExact
			}
		}
	}
	for _, e := range target {
		if e.Code == code && (fm == "" || e.Meaning == "") {
			return e, matchIdentity
		}
	}
	if fm != "" {
		for _, e := range target {
			em := fold(e.Meaning)
			if em != "" && (strings.Contains(em, fm) || strings.Contains(fm, em)) {
				return e, matchNearest
			}
		}
	}
	for _, e := range target {
		if strings.HasPrefix(e.Code, code) || strings.HasPrefix(code, e.Code) {
			return e, matchNearest
		}
	}
	return LookupEntry{}, matchNone
}
