// Package core provides the EURING record recognition and conversion engine.
//
// The package has no transport dependencies. The web server, the CLI and the
// tests all drive it through [Service].
//
// # Catalog
//
// Version layouts are registered at init time by the layouts subpackage
// using [Register]. A [Catalog] compiles them into an immutable [Snapshot]
// together with the default and custom lookup tables:
//
//	catalog, err := core.NewBuiltinCatalog()
//	snap := catalog.Snapshot()
//	table, err := snap.Table("age_concluded", "euring_2000")
//
// Lookup updates build a new snapshot and publish it with one atomic swap.
// Requests already holding the old snapshot finish against it.
//
// # Pipeline
//
// A record flows through four stages, each a method on [Snapshot]:
//
//  1. [Snapshot.Recognize] scores the record against every version
//  2. [Snapshot.Parse] splits it into positional values
//  3. [Snapshot.Extract] decodes the values into a version-independent
//     [SemanticRecord] keyed by [CanonicalKey]
//  4. [Snapshot.Convert] re-encodes that record for the target version
//
// Conversion never fails because a field is lossy. Rounding, remapped codes,
// dropped values and omitted fields are reported as [ConversionNote]s. Only a
// mandatory target field left empty fails the conversion.
//
// # Batches
//
// [Service.RecognizeBatch] and [Service.ConvertBatch] fan out over an
// errgroup with a bounded limit and keep results in input order. A
// server-wide [BatchLimiter] caps how many batches run at once.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FMT001-FMT003: record structure
//   - REC001: recognition
//   - CNV001-CNV004: conversion
//   - BAT001-BAT003: batch admission
//   - CAT001-CAT003: catalog and lookup tables
package core
