package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/euring/internal/core"
)

func TestTable_Sources(t *testing.T) {
	snap := newSnapshot(t)

	age, err := snap.Table("age_concluded", "euring_2000")
	require.NoError(t, err)
	assert.Equal(t, core.SourceDefault, age.Source)
	assert.Len(t, age.Entries, 18)
	e, ok := age.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Pullus (nestling)", e.Meaning)

	tm, err := snap.Table("time", "euring_2000")
	require.NoError(t, err)
	assert.Equal(t, core.SourceValidValues, tm.Source)
	assert.Empty(t, tm.Entries)

	_, err = snap.Table("wingspan", "euring_2000")
	assert.ErrorIs(t, err, core.ErrUnknownField)

	_, err = snap.Table("age_concluded", "euring_1850")
	assert.ErrorIs(t, err, core.ErrUnknownVersion)
}

func TestTable_ReturnsCopy(t *testing.T) {
	snap := newSnapshot(t)

	a, err := snap.Table("sex_concluded", "euring_2020")
	require.NoError(t, err)
	a.Entries[0].Meaning = "changed"

	b, err := snap.Table("sex_concluded", "euring_2020")
	require.NoError(t, err)
	assert.Equal(t, "Male", b.Entries[0].Meaning)
}

func TestUpdateTable_Merge(t *testing.T) {
	c := newCatalog(t)
	before := c.Snapshot()

	got, err := c.UpdateTable(context.Background(), "sex_concluded", "euring_2020", []core.LookupEntry{
		{Code: "M", Meaning: "Male bird"},
		{Code: "X", Meaning: "Hermaphrodite"},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, core.SourceCustom, got.Source)
	assert.Equal(t, []core.LookupEntry{
		{Code: "M", Meaning: "Male bird"},
		{Code: "F", Meaning: "Female"},
		{Code: "U", Meaning: "Unknown/Undetermined"},
		{Code: "X", Meaning: "Hermaphrodite"},
	}, got.Entries)

	after := c.Snapshot()
	assert.Equal(t, before.Generation()+1, after.Generation())

	current, err := c.Table("sex_concluded", "euring_2020")
	require.NoError(t, err)
	assert.Equal(t, got, current)

	// Readers holding the old snapshot are unaffected.
	old, err := before.Table("sex_concluded", "euring_2020")
	require.NoError(t, err)
	assert.Equal(t, core.SourceDefault, old.Source)
	assert.Equal(t, "Male", old.Entries[0].Meaning)

	// Other versions keep their own table.
	other, err := c.Table("sex_concluded", "euring_2000")
	require.NoError(t, err)
	assert.Equal(t, core.SourceDefault, other.Source)
}

func TestUpdateTable_Replace(t *testing.T) {
	c := newCatalog(t)

	got, err := c.UpdateTable(context.Background(), "moult", "euring_2020", []core.LookupEntry{
		{Code: " B ", Meaning: "Body moult"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, []core.LookupEntry{{Code: "B", Meaning: "Body moult"}}, got.Entries)
}

func TestUpdateTable_Rejects(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	gen := c.Snapshot().Generation()

	_, err := c.UpdateTable(ctx, "sex_concluded", "euring_2020", []core.LookupEntry{{Code: "M"}, {Code: "M"}}, false)
	assert.ErrorIs(t, err, core.ErrDuplicateCode)

	_, err = c.UpdateTable(ctx, "sex_concluded", "euring_2020", nil, false)
	assert.Error(t, err)

	_, err = c.UpdateTable(ctx, "sex_concluded", "euring_2020", []core.LookupEntry{{Code: "  "}}, false)
	assert.Error(t, err)

	_, err = c.UpdateTable(ctx, "wingspan", "euring_2020", []core.LookupEntry{{Code: "1"}}, false)
	assert.ErrorIs(t, err, core.ErrUnknownField)

	assert.Equal(t, gen, c.Snapshot().Generation(), "failed updates publish nothing")
}

func TestUpdateTable_AffectsConversion(t *testing.T) {
	c := newCatalog(t)

	// Give the 1966 age table a meaning that only matches 2020 code "H".
	_, err := c.UpdateTable(context.Background(), "age_code", "euring_1966", []core.LookupEntry{
		{Code: "9", Meaning: "After tenth-year"},
	}, false)
	require.NoError(t, err)

	snap := c.Snapshot()
	res := convert(t, snap, record1966, "euring_1966", "euring_2020", true)
	require.NoError(t, res.Err)
	assert.Equal(t, "3", fieldsOf(t, snap, res.Converted, "euring_2020")["age_concluded"])

	raw := "5320 TA12345 9 11022023 5215N 01325E 10 2 050 0115 0750"
	res = convert(t, snap, raw, "euring_1966", "euring_2020", true)
	require.NoError(t, res.Err)
	assert.Equal(t, "H", fieldsOf(t, snap, res.Converted, "euring_2020")["age_concluded"])
}
