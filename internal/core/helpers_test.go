package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/euring/internal/core"
	_ "github.com/JonMunkholm/euring/internal/core/layouts"
)

// One record per built-in layout, all describing the same capture.
const (
	record1966 = "5320 TA12345 3 11022023 5215N 01325E 10 2 050 0115 0750"
	record1979 = "05320IATA1234531N15062211022352150N01325E20200--0500115--075018--21MABC-------"
	record2000 = "IABA0TA...1234511ZZ0532005320N0HNMM33U-----1102202301030ITVE+521500+01325000820040000000000000"
	record2020 = "IAB|A0|TA...12345|1|1|ZZ|05320|05320|N|0|H|N|M|M|3|3|U|--|--|-|11022023|0|1030|ITVE|52.2500|13.4167|0|8|20|0|4|00000|000|00000|50.0|11.5|75.0|21.0|3|2|M|ringed in reedbed"
)

func newCatalog(t *testing.T) *core.Catalog {
	t.Helper()
	c, err := core.NewBuiltinCatalog()
	require.NoError(t, err)
	return c
}

func newSnapshot(t *testing.T) *core.Snapshot {
	t.Helper()
	return newCatalog(t).Snapshot()
}

func newService(t *testing.T) *core.Service {
	t.Helper()
	return core.NewService(newCatalog(t), core.DefaultConfig(), nil)
}

func century() core.CenturyPolicy {
	return core.CenturyPolicy{Pivot: core.DefaultCenturyPivot}
}

// extract parses and extracts raw as version.
func extract(t *testing.T, snap *core.Snapshot, raw, version string) core.SemanticRecord {
	t.Helper()
	rec, err := snap.Parse(raw, version)
	require.NoError(t, err)
	sem, err := snap.Extract(rec, century())
	require.NoError(t, err)
	return sem
}
