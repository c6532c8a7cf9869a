package core_test

import (
	"context"
	"testing"

	"github.com/JonMunkholm/euring/internal/core"
)

func benchSnapshot(b *testing.B) *core.Snapshot {
	b.Helper()
	c, err := core.NewBuiltinCatalog()
	if err != nil {
		b.Fatal(err)
	}
	return c.Snapshot()
}

// ============================================================================
// Recognition Benchmarks
// ============================================================================

// BenchmarkRecognize scores every built-in layout against one record of each.
// Runs once per record on every recognize and auto-detected convert.
func BenchmarkRecognize(b *testing.B) {
	snap := benchSnapshot(b)
	records := []string{record1966, record1979, record2000, record2020}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, r := range records {
			snap.Recognize(r, false, core.DefaultMinConfidence)
		}
	}
}

// BenchmarkRecognize_Analysis includes the per-version breakdown.
func BenchmarkRecognize_Analysis(b *testing.B) {
	snap := benchSnapshot(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap.Recognize(record2020, true, core.DefaultMinConfidence)
	}
}

// ============================================================================
// Parse / Extract Benchmarks
// ============================================================================

func BenchmarkParse_Delimited(b *testing.B) {
	snap := benchSnapshot(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := snap.Parse(record2020, "euring_2020"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_FixedWidth(b *testing.B) {
	snap := benchSnapshot(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := snap.Parse(record2000, "euring_2000"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExtract decodes coordinates, dates and codes into a SemanticRecord.
func BenchmarkExtract(b *testing.B) {
	snap := benchSnapshot(b)
	rec, err := snap.Parse(record2020, "euring_2020")
	if err != nil {
		b.Fatal(err)
	}
	policy := core.CenturyPolicy{Pivot: core.DefaultCenturyPivot}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := snap.Extract(rec, policy); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCleanValue is called for every field of every record.
func BenchmarkCleanValue(b *testing.B) {
	values := []string{
		"TA...12345",
		"  05320 ",
		"IAB\r",
		"ringed in reedbed",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			core.CleanValue(v)
		}
	}
}

// ============================================================================
// Conversion Benchmarks
// ============================================================================

func benchConvert(b *testing.B, raw, source, target string, semantic bool) {
	snap := benchSnapshot(b)
	rec, err := snap.Parse(raw, source)
	if err != nil {
		b.Fatal(err)
	}
	policy := core.CenturyPolicy{Pivot: core.DefaultCenturyPivot}
	sem, err := snap.Extract(rec, policy)
	if err != nil {
		b.Fatal(err)
	}
	opts := core.ConvertOptions{UseSemantic: semantic, Century: policy}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := snap.Convert(sem, target, opts); res.Err != nil && semantic {
			b.Fatal(res.Err)
		}
	}
}

// BenchmarkConvert_1966To2020 widens a fixed-width record into the pipe layout.
func BenchmarkConvert_1966To2020(b *testing.B) {
	benchConvert(b, record1966, "euring_1966", "euring_2020", true)
}

// BenchmarkConvert_2020To1966 narrows, remapping codes and rounding coordinates.
func BenchmarkConvert_2020To1966(b *testing.B) {
	benchConvert(b, record2020, "euring_2020", "euring_1966", true)
}

func BenchmarkConvert_Legacy(b *testing.B) {
	benchConvert(b, record2000, "euring_2000", "euring_1979", false)
}

// BenchmarkMatrix builds the full compatibility matrix shown on the index page.
func BenchmarkMatrix(b *testing.B) {
	snap := benchSnapshot(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap.Matrix()
	}
}

// ============================================================================
// Service Benchmarks
// ============================================================================

// BenchmarkService_ConvertBatch runs a full batch through the worker pool.
func BenchmarkService_ConvertBatch(b *testing.B) {
	c, err := core.NewBuiltinCatalog()
	if err != nil {
		b.Fatal(err)
	}
	svc := core.NewService(c, core.DefaultConfig(), nil)

	reqs := make([]core.ConvertRequest, 40)
	for i := range reqs {
		reqs[i] = core.ConvertRequest{EuringString: record1966, TargetVersion: "euring_2020"}
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.ConvertBatch(ctx, reqs, 8); err != nil {
			b.Fatal(err)
		}
	}
}
