package core

// recognition.go scores a raw record against every known layout.
//
// Each version runs the same generic battery, derived from its FormatSpec and
// field catalog, followed by its own DiscriminantSpecs. A version's score is
// the weighted mean of its discriminant scores, so it always lies in [0,1]
// and is independent of how the other versions score.
//
// Ties are broken by preferring the more recent year, then the lexically
// smaller version ID. Catalog order never decides the winner.

import (
	"math"
	"strings"
)

// Weights of the generic discriminants. Version-specific discriminants carry
// their own weights in the catalog.
const (
	weightLengthWindow = 0.2
	weightSeparator    = 0.2
	weightStructure    = 0.2
	weightFieldClasses = 0.2
)

// DefaultMinConfidence is the score below which a result is flagged.
const DefaultMinConfidence = 0.6

// Recognize returns the best matching version for raw. A low score is
// reported through LowConfidence, never as an error.
func (s *Snapshot) Recognize(raw string, includeAnalysis bool, minConfidence float64) RecognitionResult {
	line := strings.TrimRight(raw, "\r\n")
	result := RecognitionResult{Length: len(line)}

	var best *VersionAnalysis
	var bestYear int
	analyses := make([]VersionAnalysis, 0, len(s.order))

	for _, id := range s.order {
		cv := s.versions[id]
		a := s.scoreVersion(cv, line)
		analyses = append(analyses, a)

		if best == nil || outranks(a, cv.Year, *best, bestYear) {
			cp := a
			best = &cp
			bestYear = cv.Year
		}
	}

	if best != nil {
		result.Version = best.Version
		result.Confidence = best.Score
	}
	result.LowConfidence = result.Confidence < minConfidence
	if includeAnalysis {
		result.Analysis = analyses
	}
	return result
}

// outranks reports whether candidate a beats the current best b.
func outranks(a VersionAnalysis, aYear int, b VersionAnalysis, bYear int) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if aYear != bYear {
		return aYear > bYear
	}
	return a.Version < b.Version
}

func (s *Snapshot) scoreVersion(cv *compiledVersion, line string) VersionAnalysis {
	a := VersionAnalysis{Version: cv.ID}

	rec, parseErr := parseWith(cv, line, s.separators)
	parsed := parseErr == nil
	if parseErr != nil {
		a.ParseError = parseErr.Error()
	}

	add := func(name string, weight, score float64) {
		a.Discriminants = append(a.Discriminants, DiscriminantScore{Name: name, Weight: weight, Score: clamp01(score)})
	}

	add("length_window", weightLengthWindow, lengthScore(cv.Format, len(strings.TrimSpace(line))))
	add("separator", weightSeparator, s.separatorScore(cv, line))
	if parsed {
		add("structure", weightStructure, 1)
		add("field_classes", weightFieldClasses, fieldClassScore(cv, rec))
	} else {
		add("structure", weightStructure, 0)
		add("field_classes", weightFieldClasses, 0)
	}

	for _, d := range cv.discs {
		add(d.Name, d.Weight, discriminantScore(d, cv, line, rec, parsed))
	}

	var sum, weights float64
	for _, d := range a.Discriminants {
		sum += d.Weight * d.Score
		weights += d.Weight
	}
	if weights > 0 {
		a.Score = clamp01(sum / weights)
	}
	return a
}

func lengthScore(f FormatSpec, n int) float64 {
	if n >= f.MinLength && n <= f.MaxLength {
		return 1
	}
	if f.MaxLength <= 0 {
		return 0
	}
	dist := f.MinLength - n
	if n > f.MaxLength {
		dist = n - f.MaxLength
	}
	return math.Max(0, 1-float64(dist)/float64(f.MaxLength))
}

func (s *Snapshot) separatorScore(cv *compiledVersion, line string) float64 {
	if cv.Format.Layout == LayoutFixedWidth {
		for _, sep := range s.separators {
			if strings.Contains(line, sep) {
				return 0
			}
		}
		return 1
	}

	trimmed := strings.TrimSpace(line)
	expected := len(cv.Fields) - 1
	count := strings.Count(trimmed, cv.Format.Separator)
	switch {
	case expected <= 0:
		return 1
	case count == expected:
		return 1
	case count == 0:
		return 0
	default:
		return 0.5 * float64(min(count, expected)) / float64(expected)
	}
}

func fieldClassScore(cv *compiledVersion, rec RawRecord) float64 {
	checked, matched := 0, 0
	for i, re := range cv.classes {
		if re == nil || i >= len(rec.Values) {
			continue
		}
		checked++
		if re.MatchString(strings.TrimSpace(rec.Values[i])) {
			matched++
		}
	}
	if checked == 0 {
		return 1
	}
	return float64(matched) / float64(checked)
}

func discriminantScore(d compiledDiscriminant, cv *compiledVersion, line string, rec RawRecord, parsed bool) float64 {
	switch d.Kind {
	case DiscRecordPattern:
		if d.re.MatchString(line) {
			return 1
		}
	case DiscContains:
		if strings.Contains(line, d.Pattern) {
			return 1
		}
	case DiscMinSeparators:
		if d.Count <= 0 {
			return 1
		}
		n := strings.Count(line, cv.Format.Separator)
		return math.Min(1, float64(n)/float64(d.Count))
	case DiscFieldPattern:
		if !parsed {
			return 0
		}
		for i, f := range cv.Fields {
			if f.Name == d.Field && i < len(rec.Values) {
				if d.re.MatchString(strings.TrimSpace(rec.Values[i])) {
					return 1
				}
				return 0
			}
		}
	}
	return 0
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
