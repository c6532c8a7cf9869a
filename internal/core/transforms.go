package core

// transforms.go holds the value codecs shared by extraction and conversion.
//
// Every encoding decodes into a canonical value (decimal degrees, time.Time,
// numbers in the field's base unit) and encodes back from it. Encoders report
// whether the written value differs from the canonical one so the converter
// can note rounding.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCenturyPivot splits two-digit years: yy >= pivot is 19yy, else 20yy.
const DefaultCenturyPivot = 50

// CenturyPolicy resolves two-digit years.
type CenturyPolicy struct {
	Pivot int
}

// Expand returns the four-digit year for yy.
func (p CenturyPolicy) Expand(yy int) int {
	if yy >= p.Pivot {
		return 1900 + yy
	}
	return 2000 + yy
}

// Representable reports whether year survives a round trip through two digits.
func (p CenturyPolicy) Representable(year int) bool {
	return year >= 0 && p.Expand(year%100) == year
}

// numericRegex validates a decimal number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// isNotRecorded reports values EURING writes as "not recorded".
func isNotRecorded(s string) bool {
	if s == "" {
		return true
	}
	return strings.Trim(s, "-.") == ""
}

// CleanValue trims whitespace and stray control characters from a raw value.
func CleanValue(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// --- coordinates ---

func coordDegreeDigits(key CanonicalKey) int {
	if key == KeyLatitude {
		return 2
	}
	return 3
}

func coordLimit(key CanonicalKey) float64 {
	if key == KeyLatitude {
		return 90
	}
	return 180
}

func hemispheres(key CanonicalKey) (pos, neg byte) {
	if key == KeyLatitude {
		return 'N', 'S'
	}
	return 'E', 'W'
}

// coordResolution is the smallest step an encoding can express, in degrees.
func coordResolution(f FieldDefinition) float64 {
	switch f.Encoding {
	case EncCoordDM:
		return 1.0 / 60
	case EncCoordDMT:
		return 1.0 / 600
	case EncCoordDMS:
		return 1.0 / 3600
	case EncCoordDecimal:
		return math.Pow10(-f.Decimals)
	}
	return 1
}

// decodeCoordinate returns signed decimal degrees.
func decodeCoordinate(raw string, f FieldDefinition) (float64, error) {
	dd := coordDegreeDigits(f.Canonical)
	pos, neg := hemispheres(f.Canonical)
	bad := fmt.Errorf("invalid coordinate %q for %s", raw, f.Encoding)

	var deg float64
	switch f.Encoding {
	case EncCoordDM, EncCoordDMT:
		extra := 0
		if f.Encoding == EncCoordDMT {
			extra = 1
		}
		if len(raw) != dd+2+extra+1 {
			return 0, bad
		}
		d, err1 := strconv.Atoi(raw[:dd])
		m, err2 := strconv.Atoi(raw[dd : dd+2])
		if err1 != nil || err2 != nil || m >= 60 {
			return 0, bad
		}
		minutes := float64(m)
		if extra == 1 {
			t, err := strconv.Atoi(raw[dd+2 : dd+3])
			if err != nil {
				return 0, bad
			}
			minutes += float64(t) / 10
		}
		deg = float64(d) + minutes/60
		switch raw[len(raw)-1] {
		case pos:
		case neg:
			deg = -deg
		default:
			return 0, bad
		}

	case EncCoordDMS:
		if len(raw) != 1+dd+4 {
			return 0, bad
		}
		sign := 1.0
		switch raw[0] {
		case '+':
		case '-':
			sign = -1
		default:
			return 0, bad
		}
		d, err1 := strconv.Atoi(raw[1 : 1+dd])
		m, err2 := strconv.Atoi(raw[1+dd : 3+dd])
		sec, err3 := strconv.Atoi(raw[3+dd:])
		if err1 != nil || err2 != nil || err3 != nil || m >= 60 || sec >= 60 {
			return 0, bad
		}
		deg = sign * (float64(d) + float64(m)/60 + float64(sec)/3600)

	case EncCoordDecimal:
		v, err := parseNumber(raw)
		if err != nil {
			return 0, bad
		}
		deg = v

	default:
		return 0, fmt.Errorf("unsupported coordinate encoding %s", f.Encoding)
	}

	if math.Abs(deg) > coordLimit(f.Canonical) {
		return 0, fmt.Errorf("coordinate %q out of range", raw)
	}
	return deg, nil
}

// encodeCoordinate writes deg in f's encoding. rounded is true when the
// written value differs from deg.
func encodeCoordinate(deg float64, f FieldDefinition) (out string, rounded bool, err error) {
	if math.Abs(deg) > coordLimit(f.Canonical) {
		return "", false, fmt.Errorf("coordinate %.6f out of range", deg)
	}
	dd := coordDegreeDigits(f.Canonical)
	pos, neg := hemispheres(f.Canonical)
	abs := math.Abs(deg)

	var written float64
	switch f.Encoding {
	case EncCoordDM, EncCoordDMT:
		steps := 60.0
		if f.Encoding == EncCoordDMT {
			steps = 600
		}
		units := int(math.Round(abs * steps))
		written = float64(units) / steps
		var mins string
		if f.Encoding == EncCoordDMT {
			mins = fmt.Sprintf("%02d%d", (units/10)%60, units%10)
			units /= 10
		} else {
			mins = fmt.Sprintf("%02d", units%60)
		}
		hemi := pos
		if deg < 0 {
			hemi = neg
		}
		out = fmt.Sprintf("%0*d%s%c", dd, units/60, mins, hemi)

	case EncCoordDMS:
		secs := int(math.Round(abs * 3600))
		written = float64(secs) / 3600
		sign := "+"
		if deg < 0 {
			sign = "-"
		}
		out = fmt.Sprintf("%s%0*d%02d%02d", sign, dd, secs/3600, (secs/60)%60, secs%60)

	case EncCoordDecimal:
		out = strconv.FormatFloat(deg, 'f', f.Decimals, 64)
		written, _ = strconv.ParseFloat(out, 64)
		written = math.Abs(written)

	default:
		return "", false, fmt.Errorf("unsupported coordinate encoding %s", f.Encoding)
	}

	return out, math.Abs(written-abs) > 1e-9, nil
}

// --- dates ---

func decodeDate(raw string, f FieldDefinition, policy CenturyPolicy) (t time.Time, inferred bool, err error) {
	switch f.Encoding {
	case EncDateDMY8:
		t, err = time.Parse("02012006", raw)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q", raw)
		}
		return t, false, nil
	case EncDateDMY6:
		if len(raw) != 6 {
			return time.Time{}, false, fmt.Errorf("invalid date %q", raw)
		}
		yy, err := strconv.Atoi(raw[4:])
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q", raw)
		}
		full := raw[:4] + strconv.Itoa(policy.Expand(yy))
		t, err = time.Parse("02012006", full)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q", raw)
		}
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("unsupported date encoding %s", f.Encoding)
}

// dateParts accumulates split day/month/year fields.
type dateParts struct {
	day, month, year int
	raw              [3]string
	first            FieldDefinition
	seen             int
	bad              bool
}

func (p *dateParts) add(f FieldDefinition, raw string) {
	if p.seen == 0 {
		p.first = f
	}
	p.seen++
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.bad = true
	}
	switch f.Encoding {
	case EncDateDay:
		p.day, p.raw[0] = n, raw
	case EncDateMonth:
		p.month, p.raw[1] = n, raw
	case EncDateYear:
		p.year, p.raw[2] = n, raw
	}
}

func (p *dateParts) empty() bool {
	return isNotRecorded(p.raw[0]) && isNotRecorded(p.raw[1]) && isNotRecorded(p.raw[2])
}

func (p *dateParts) date() (time.Time, error) {
	joined := strings.Join(p.raw[:], "/")
	if p.bad || p.seen != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q", joined)
	}
	t := time.Date(p.year, time.Month(p.month), p.day, 0, 0, 0, 0, time.UTC)
	if t.Day() != p.day || int(t.Month()) != p.month {
		return time.Time{}, fmt.Errorf("invalid date %q", joined)
	}
	return t, nil
}

func encodeDate(t time.Time, f FieldDefinition, policy CenturyPolicy) (string, error) {
	switch f.Encoding {
	case EncDateDMY8:
		if t.Year() > 9999 {
			return "", fmt.Errorf("year %d out of range", t.Year())
		}
		return t.Format("02012006"), nil
	case EncDateDMY6:
		if !policy.Representable(t.Year()) {
			return "", fmt.Errorf("year %d cannot be written with two digits (would read as %d)",
				t.Year(), policy.Expand(t.Year()%100))
		}
		return t.Format("020106"), nil
	case EncDateDay:
		return fmt.Sprintf("%02d", t.Day()), nil
	case EncDateMonth:
		return fmt.Sprintf("%02d", int(t.Month())), nil
	case EncDateYear:
		return fmt.Sprintf("%04d", t.Year()), nil
	}
	return "", fmt.Errorf("unsupported date encoding %s", f.Encoding)
}

func validTime(s string) bool {
	if len(s) != 4 {
		return false
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[2:])
	return err1 == nil && err2 == nil && h >= 0 && h < 24 && m >= 0 && m < 60
}

// --- numbers ---

// numericScale is the size of one raw step in the field's unit.
func numericScale(f FieldDefinition) float64 {
	switch f.Encoding {
	case EncScaled:
		if f.Scale > 0 {
			return f.Scale
		}
	case EncDecimal:
		return math.Pow10(-f.Decimals)
	}
	return 1
}

// numericCapacity is the largest value the field can hold.
func numericCapacity(f FieldDefinition) float64 {
	switch f.Encoding {
	case EncDecimal:
		intDigits := f.Length - f.Decimals
		if f.Decimals > 0 {
			intDigits--
		}
		return math.Pow10(max(intDigits, 0)) - numericScale(f)
	default:
		return (math.Pow10(f.Length) - 1) * numericScale(f)
	}
}

func decodeNumber(raw string, f FieldDefinition) (float64, error) {
	switch f.Encoding {
	case EncDigits:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
		return float64(n), nil
	case EncScaled:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
		return float64(n) * numericScale(f), nil
	case EncDecimal:
		return parseNumber(raw)
	}
	return 0, fmt.Errorf("unsupported numeric encoding %s", f.Encoding)
}

// encodeNumber writes v in f's encoding, zero padding integers to the field
// length. rounded is true when precision was lost.
func encodeNumber(v float64, f FieldDefinition) (out string, rounded bool, err error) {
	if v < 0 {
		return "", false, fmt.Errorf("negative value %g", v)
	}
	if v > numericCapacity(f)+1e-9 {
		return "", false, fmt.Errorf("value %g exceeds field capacity %g", v, numericCapacity(f))
	}
	switch f.Encoding {
	case EncDigits, EncScaled:
		steps := v / numericScale(f)
		n := math.Round(steps)
		return fmt.Sprintf("%0*d", f.Length, int64(n)), math.Abs(n-steps) > 1e-6, nil
	case EncDecimal:
		out = strconv.FormatFloat(v, 'f', f.Decimals, 64)
		back, _ := strconv.ParseFloat(out, 64)
		return out, math.Abs(back-v) > 1e-9, nil
	}
	return "", false, fmt.Errorf("unsupported numeric encoding %s", f.Encoding)
}

// --- rings ---

// normalizeRing strips padding dots and spaces.
func normalizeRing(raw string) string {
	return strings.ToUpper(strings.NewReplacer(".", "", " ", "").Replace(raw))
}

// encodeRing pads a ring identifier to length by inserting dots between the
// alphabetic prefix and the serial number.
func encodeRing(id string, length int) (string, error) {
	if len(id) > length {
		return "", fmt.Errorf("ring %q longer than %d characters", id, length)
	}
	if len(id) == length {
		return id, nil
	}
	split := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if split < 0 {
		split = len(id)
	}
	return id[:split] + strings.Repeat(".", length-len(id)) + id[split:], nil
}

// pad fits s to length for fixed-width output. Empty values become dashes.
func pad(s string, length int) string {
	if len(s) >= length {
		return s[:length]
	}
	return s + strings.Repeat("-", length-len(s))
}
