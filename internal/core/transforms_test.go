package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordField(key CanonicalKey, enc Encoding, decimals int) FieldDefinition {
	return FieldDefinition{Canonical: key, Encoding: enc, Decimals: decimals}
}

func TestCoordinates_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		f    FieldDefinition
		want float64
	}{
		{"dm north", "5215N", coordField(KeyLatitude, EncCoordDM, 0), 52.25},
		{"dm south", "3330S", coordField(KeyLatitude, EncCoordDM, 0), -33.5},
		{"dm west", "00130W", coordField(KeyLongitude, EncCoordDM, 0), -1.5},
		{"dmt tenths", "52153N", coordField(KeyLatitude, EncCoordDMT, 0), 52 + 15.3/60},
		{"dms", "+521530", coordField(KeyLatitude, EncCoordDMS, 0), 52 + 15.0/60 + 30.0/3600},
		{"dms negative longitude", "-0013000", coordField(KeyLongitude, EncCoordDMS, 0), -1.5},
		{"decimal", "-12.3456", coordField(KeyLongitude, EncCoordDecimal, 4), -12.3456},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCoordinate(tt.raw, tt.f)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCoordinates_DecodeInvalid(t *testing.T) {
	for _, tt := range []struct {
		raw string
		f   FieldDefinition
	}{
		{"5260N", coordField(KeyLatitude, EncCoordDM, 0)},
		{"5215X", coordField(KeyLatitude, EncCoordDM, 0)},
		{"521N", coordField(KeyLatitude, EncCoordDM, 0)},
		{"9500N", coordField(KeyLatitude, EncCoordDM, 0)},
		{"521530", coordField(KeyLatitude, EncCoordDMS, 0)},
		{"+526030", coordField(KeyLatitude, EncCoordDMS, 0)},
		{"abc", coordField(KeyLatitude, EncCoordDecimal, 4)},
		{"181.0", coordField(KeyLongitude, EncCoordDecimal, 4)},
	} {
		_, err := decodeCoordinate(tt.raw, tt.f)
		assert.Error(t, err, tt.raw)
	}
}

func TestCoordinates_Encode(t *testing.T) {
	tests := []struct {
		name    string
		deg     float64
		f       FieldDefinition
		want    string
		rounded bool
	}{
		{"dm exact", 52.25, coordField(KeyLatitude, EncCoordDM, 0), "5215N", false},
		{"dm rounded", 13.4167, coordField(KeyLongitude, EncCoordDM, 0), "01325E", true},
		{"dm west", -1.5, coordField(KeyLongitude, EncCoordDM, 0), "00130W", false},
		{"dmt", 52.255, coordField(KeyLatitude, EncCoordDMT, 0), "52153N", false},
		{"dms", -1.5, coordField(KeyLongitude, EncCoordDMS, 0), "-0013000", false},
		{"decimal", 13.0 + 25.0/60, coordField(KeyLongitude, EncCoordDecimal, 4), "13.4167", true},
		{"decimal exact", 52.25, coordField(KeyLatitude, EncCoordDecimal, 4), "52.2500", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rounded, err := encodeCoordinate(tt.deg, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rounded, rounded)
		})
	}

	_, _, err := encodeCoordinate(91, coordField(KeyLatitude, EncCoordDM, 0))
	assert.Error(t, err)
}

func TestCenturyPolicy(t *testing.T) {
	p := CenturyPolicy{Pivot: DefaultCenturyPivot}

	assert.Equal(t, 1950, p.Expand(50))
	assert.Equal(t, 1999, p.Expand(99))
	assert.Equal(t, 2049, p.Expand(49))
	assert.Equal(t, 2000, p.Expand(0))

	assert.True(t, p.Representable(1966))
	assert.True(t, p.Representable(2023))
	assert.False(t, p.Representable(1949))
	assert.False(t, p.Representable(2050))
}

func TestDates(t *testing.T) {
	policy := CenturyPolicy{Pivot: DefaultCenturyPivot}
	dmy6 := FieldDefinition{Encoding: EncDateDMY6}
	dmy8 := FieldDefinition{Encoding: EncDateDMY8}

	got, inferred, err := decodeDate("010366", dmy6, policy)
	require.NoError(t, err)
	assert.True(t, inferred)
	assert.Equal(t, time.Date(1966, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	got, inferred, err = decodeDate("29022024", dmy8, policy)
	require.NoError(t, err)
	assert.False(t, inferred)
	assert.Equal(t, 29, got.Day())

	_, _, err = decodeDate("29022023", dmy8, policy)
	assert.Error(t, err)
	_, _, err = decodeDate("0103", dmy6, policy)
	assert.Error(t, err)

	out, err := encodeDate(time.Date(1966, time.March, 1, 0, 0, 0, 0, time.UTC), dmy6, policy)
	require.NoError(t, err)
	assert.Equal(t, "010366", out)

	_, err = encodeDate(time.Date(1949, time.March, 1, 0, 0, 0, 0, time.UTC), dmy6, policy)
	assert.Error(t, err)

	for enc, want := range map[Encoding]string{EncDateDay: "07", EncDateMonth: "09", EncDateYear: "2001"} {
		out, err := encodeDate(time.Date(2001, time.September, 7, 0, 0, 0, 0, time.UTC), FieldDefinition{Encoding: enc}, policy)
		require.NoError(t, err)
		assert.Equal(t, want, out)
	}
}

func TestDateParts(t *testing.T) {
	var p dateParts
	p.add(FieldDefinition{Name: "day", Encoding: EncDateDay}, "31")
	p.add(FieldDefinition{Name: "month", Encoding: EncDateMonth}, "04")
	p.add(FieldDefinition{Name: "year", Encoding: EncDateYear}, "2023")
	_, err := p.date()
	assert.Error(t, err, "April has 30 days")

	var q dateParts
	q.add(FieldDefinition{Encoding: EncDateDay}, "--")
	q.add(FieldDefinition{Encoding: EncDateMonth}, "--")
	q.add(FieldDefinition{Encoding: EncDateYear}, "----")
	assert.True(t, q.empty())
}

func TestNumbers(t *testing.T) {
	scaled := FieldDefinition{Encoding: EncScaled, Length: 4, Scale: 0.1}
	n, err := decodeNumber("0115", scaled)
	require.NoError(t, err)
	assert.InDelta(t, 11.5, n, 1e-9)

	out, rounded, err := encodeNumber(11.54, scaled)
	require.NoError(t, err)
	assert.Equal(t, "0115", out)
	assert.True(t, rounded)

	_, _, err = encodeNumber(1000, scaled)
	assert.Error(t, err, "exceeds 999.9")
	_, _, err = encodeNumber(-1, scaled)
	assert.Error(t, err)

	dec := FieldDefinition{Encoding: EncDecimal, Length: 5, Decimals: 1}
	out, rounded, err = encodeNumber(50, dec)
	require.NoError(t, err)
	assert.Equal(t, "50.0", out)
	assert.False(t, rounded)
	assert.InDelta(t, 999.9, numericCapacity(dec), 1e-9)

	_, err = decodeNumber("12a", FieldDefinition{Encoding: EncDigits})
	assert.Error(t, err)
}

func TestRings(t *testing.T) {
	assert.Equal(t, "TA12345", normalizeRing("TA...12345"))
	assert.Equal(t, "TA12345", normalizeRing("ta 12345"))

	out, err := encodeRing("TA12345", 10)
	require.NoError(t, err)
	assert.Equal(t, "TA...12345", out)

	out, err = encodeRing("12345", 7)
	require.NoError(t, err)
	assert.Equal(t, "..12345", out)

	_, err = encodeRing("TA12345678", 7)
	assert.Error(t, err)
}

func TestCleanValueAndNotRecorded(t *testing.T) {
	assert.Equal(t, "AB", CleanValue(" A\x00B\t"))
	assert.True(t, isNotRecorded(""))
	assert.True(t, isNotRecorded("---"))
	assert.True(t, isNotRecorded("..."))
	assert.False(t, isNotRecorded("-1"))
	assert.Equal(t, "ab--", pad("ab", 4))
	assert.Equal(t, "abc", pad("abcd", 3))
}

func TestRemapCode(t *testing.T) {
	target := []LookupEntry{
		{Code: "M", Meaning: "Male"},
		{Code: "F", Meaning: "Female"},
		{Code: "U", Meaning: "Unknown/Undetermined"},
	}

	tests := []struct {
		name    string
		code    string
		meaning string
		want    string
		match   remapMatch
	}{
		{"meaning folded", "1", "MALE", "M", matchExact},
		{"identity without meaning", "F", "", "F", matchIdentity},
		{"containment", "0", "Unknown", "U", matchNearest},
		{"no match", "X", "Hermaphrodite", "", matchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := remapCode(tt.code, tt.meaning, target)
			assert.Equal(t, tt.match, m)
			assert.Equal(t, tt.want, e.Code)
		})
	}

	e, m := remapCode("10", "", []LookupEntry{{Code: "1", Meaning: "x"}})
	assert.Equal(t, matchNearest, m, "shared prefix")
	assert.Equal(t, "1", e.Code)
}
