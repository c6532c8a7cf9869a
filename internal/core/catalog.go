package core

// catalog.go holds the read-mostly version catalog and lookup tables.
//
// The whole catalog lives in an immutable Snapshot. Readers take one atomic
// load per request and work against that snapshot; writers build a new
// snapshot under a mutex and publish it with a single pointer swap, so a
// reader never observes a half-applied update.

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// CatalogEntry is the persisted form of one version: its layout and any
// per-field lookup overrides.
type CatalogEntry struct {
	Version   EuringVersion            `json:"version"`
	Lookups   map[string][]LookupEntry `json:"lookups,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// CatalogStore is the external get/put store holding catalog entries.
type CatalogStore interface {
	Load(ctx context.Context) ([]CatalogEntry, error)
	Save(ctx context.Context, entry CatalogEntry) error
}

// Snapshot is an immutable view of the catalog.
type Snapshot struct {
	generation uint64
	versions   map[string]*compiledVersion
	order      []string // oldest first
	separators []string // distinct separators of delimited layouts

	defaults map[string]map[string][]LookupEntry // version -> field -> entries
	custom   map[string]map[string][]LookupEntry
}

type compiledVersion struct {
	EuringVersion
	classes []*regexp.Regexp // per field; nil means unchecked
	discs   []compiledDiscriminant
}

type compiledDiscriminant struct {
	DiscriminantSpec
	re *regexp.Regexp
}

// Generation increases with every published update.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Version returns the version with the given ID.
func (s *Snapshot) Version(id string) (*EuringVersion, bool) {
	cv, ok := s.versions[id]
	if !ok {
		return nil, false
	}
	return &cv.EuringVersion, true
}

// Versions returns all versions, oldest first.
func (s *Snapshot) Versions() []*EuringVersion {
	out := make([]*EuringVersion, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, &s.versions[id].EuringVersion)
	}
	return out
}

// Catalog owns the current snapshot and publishes updates.
type Catalog struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	store   CatalogStore
}

// NewCatalog builds a catalog from versions and their default lookup tables
// (keyed by version then field). It does not persist anything.
func NewCatalog(versions []EuringVersion, defaults map[string]map[string][]LookupEntry) (*Catalog, error) {
	snap, err := buildSnapshot(versions, defaults, nil, 1)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.current.Store(snap)
	return c, nil
}

// NewBuiltinCatalog builds a catalog from the registered layouts.
func NewBuiltinCatalog() (*Catalog, error) {
	versions := Builtins()
	if len(versions) == 0 {
		return nil, fmt.Errorf("no EURING versions registered")
	}
	return NewCatalog(versions, builtinDefaults(versions))
}

// LoadCatalog builds a catalog from the registered layouts overlaid with the
// entries held by store. Built-in versions missing from the store are seeded.
func LoadCatalog(ctx context.Context, store CatalogStore) (*Catalog, error) {
	versions := Builtins()
	if len(versions) == 0 {
		return nil, fmt.Errorf("no EURING versions registered")
	}
	defaults := builtinDefaults(versions)

	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	stored := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		stored[e.Version.ID] = e
	}

	custom := make(map[string]map[string][]LookupEntry)
	for i, v := range versions {
		e, ok := stored[v.ID]
		if !ok {
			if err := store.Save(ctx, CatalogEntry{Version: v, UpdatedAt: time.Now().UTC()}); err != nil {
				return nil, fmt.Errorf("seed catalog %s: %w", v.ID, err)
			}
			slog.Info("catalog entry seeded", "version", v.ID)
			continue
		}
		if len(e.Version.Fields) > 0 {
			versions[i] = e.Version
		}
		if len(e.Lookups) > 0 {
			custom[v.ID] = e.Lookups
		}
		delete(stored, v.ID)
	}
	for id := range stored {
		slog.Warn("catalog entry ignored, version not supported", "version", id)
	}

	snap, err := buildSnapshot(versions, defaults, custom, 1)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog loaded", "versions", len(snap.order), "custom_tables", countTables(custom))

	c := &Catalog{store: store}
	c.current.Store(snap)
	return c, nil
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// publish swaps in next. Callers hold c.mu.
func (c *Catalog) publish(next *Snapshot) {
	c.current.Store(next)
}

func builtinDefaults(versions []EuringVersion) map[string]map[string][]LookupEntry {
	out := make(map[string]map[string][]LookupEntry, len(versions))
	for _, v := range versions {
		if d := BuiltinDefaults(v.ID); len(d) > 0 {
			out[v.ID] = d
		}
	}
	return out
}

func countTables(m map[string]map[string][]LookupEntry) int {
	n := 0
	for _, t := range m {
		n += len(t)
	}
	return n
}

func buildSnapshot(versions []EuringVersion, defaults, custom map[string]map[string][]LookupEntry, gen uint64) (*Snapshot, error) {
	s := &Snapshot{
		generation: gen,
		versions:   make(map[string]*compiledVersion, len(versions)),
		defaults:   defaults,
		custom:     custom,
	}
	if s.defaults == nil {
		s.defaults = map[string]map[string][]LookupEntry{}
	}
	if s.custom == nil {
		s.custom = map[string]map[string][]LookupEntry{}
	}

	sorted := make([]EuringVersion, len(versions))
	copy(sorted, versions)
	sortVersions(sorted)

	seenSep := make(map[string]bool)
	for _, v := range sorted {
		if err := ValidateVersion(v); err != nil {
			return nil, err
		}
		if _, dup := s.versions[v.ID]; dup {
			return nil, fmt.Errorf("duplicate version %s", v.ID)
		}
		cv, err := compileVersion(v, s.custom[v.ID])
		if err != nil {
			return nil, err
		}
		s.versions[v.ID] = cv
		s.order = append(s.order, v.ID)
		if v.Format.Layout == LayoutDelimited && !seenSep[v.Format.Separator] {
			seenSep[v.Format.Separator] = true
			s.separators = append(s.separators, v.Format.Separator)
		}
	}
	return s, nil
}

// ValidateVersion checks a layout for internal consistency.
func ValidateVersion(v EuringVersion) error {
	var errs []string

	if v.ID == "" {
		errs = append(errs, "id is required")
	}
	if len(v.Fields) == 0 {
		errs = append(errs, "at least one field is required")
	}
	switch v.Format.Layout {
	case LayoutDelimited:
		if len(v.Format.Separator) != 1 {
			errs = append(errs, "delimited layout needs a single-character separator")
		}
	case LayoutFixedWidth:
		total := 0
		for _, f := range v.Fields {
			total += f.Length
		}
		if total < v.Format.MinLength || total > v.Format.MaxLength {
			errs = append(errs, fmt.Sprintf("field lengths sum to %d, outside bounds %d-%d",
				total, v.Format.MinLength, v.Format.MaxLength))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown layout %q", v.Format.Layout))
	}
	if v.Format.MinLength > v.Format.MaxLength {
		errs = append(errs, "min_length must be <= max_length")
	}

	positions := make(map[int]bool)
	canonical := make(map[CanonicalKey]bool)
	for _, f := range v.Fields {
		if positions[f.Position] {
			errs = append(errs, fmt.Sprintf("duplicate position %d", f.Position))
		}
		positions[f.Position] = true
		if f.Length <= 0 {
			errs = append(errs, fmt.Sprintf("field %s: length must be positive", f.Name))
		}
		if f.Encoding == EncFiller || f.Canonical == "" {
			continue
		}
		domain, ok := f.Canonical.Domain()
		if !ok {
			errs = append(errs, fmt.Sprintf("field %s: unknown canonical key %q", f.Name, f.Canonical))
			continue
		}
		if domain != f.SemanticDomain {
			errs = append(errs, fmt.Sprintf("field %s: domain %s does not match %s of %s",
				f.Name, f.SemanticDomain, domain, f.Canonical))
		}
		if canonical[f.Canonical] && !isDatePart(f.Encoding) {
			errs = append(errs, fmt.Sprintf("field %s: canonical key %s bound twice", f.Name, f.Canonical))
		}
		canonical[f.Canonical] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid version %s:\n  - %s", v.ID, strings.Join(errs, "\n  - "))
	}
	return nil
}

func isDatePart(e Encoding) bool {
	return e == EncDateDay || e == EncDateMonth || e == EncDateYear
}

// withCustom returns the successor of s carrying custom as its lookup
// overrides. Versions whose overrides changed are recompiled so their field
// classes accept the custom codes.
func (s *Snapshot) withCustom(custom map[string]map[string][]LookupEntry) (*Snapshot, error) {
	next := &Snapshot{
		generation: s.generation + 1,
		versions:   make(map[string]*compiledVersion, len(s.versions)),
		order:      s.order,
		separators: s.separators,
		defaults:   s.defaults,
		custom:     custom,
	}
	for id, cv := range s.versions {
		if reflect.DeepEqual(custom[id], s.custom[id]) {
			next.versions[id] = cv
			continue
		}
		recompiled, err := compileVersion(cv.EuringVersion, custom[id])
		if err != nil {
			return nil, err
		}
		next.versions[id] = recompiled
	}
	return next, nil
}

// compileVersion prepares v for parsing and recognition. custom holds the
// version's lookup overrides, keyed by field.
func compileVersion(v EuringVersion, custom map[string][]LookupEntry) (*compiledVersion, error) {
	cv := &compiledVersion{EuringVersion: v}
	// Field definitions are shared with callers; keep our own copy.
	cv.Fields = make([]FieldDefinition, len(v.Fields))
	copy(cv.Fields, v.Fields)
	sortFields(cv.Fields)

	cv.classes = make([]*regexp.Regexp, len(cv.Fields))
	for i, f := range cv.Fields {
		pattern := fieldClass(f, v.Format.Layout, custom[f.Name])
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("version %s field %s: %w", v.ID, f.Name, err)
		}
		cv.classes[i] = re
	}

	for _, d := range v.Discriminants {
		cd := compiledDiscriminant{DiscriminantSpec: d}
		if d.Kind == DiscRecordPattern || d.Kind == DiscFieldPattern {
			re, err := regexp.Compile(d.Pattern)
			if err != nil {
				return nil, fmt.Errorf("version %s discriminant %s: %w", v.ID, d.Name, err)
			}
			cd.re = re
		}
		cv.discs = append(cv.discs, cd)
	}
	return cv, nil
}

// fieldClass derives the character-class pattern a raw field slice must
// match. Empty means any content is acceptable. Codes of a custom table are
// accepted alongside the field's valid values.
func fieldClass(f FieldDefinition, layout Layout, custom []LookupEntry) string {
	exact := layout == LayoutFixedWidth
	n := func(lo int) string {
		if exact {
			return fmt.Sprintf("{%d}", f.Length)
		}
		return fmt.Sprintf("{%d,%d}", lo, f.Length)
	}
	lat := f.Canonical == KeyLatitude

	var body string
	switch f.Encoding {
	case EncFiller:
		return "^" + regexp.QuoteMeta(f.Default) + "$"
	case EncPlain:
		return ""
	case EncDigits, EncScaled, EncDateDay, EncDateMonth, EncDateYear:
		body = "[0-9]" + n(1)
	case EncDecimal:
		body = `-?[0-9]+(\.[0-9]+)?`
	case EncRing:
		body = "[A-Z0-9.]" + n(1)
	case EncCode:
		var alts []string
		seen := make(map[string]bool)
		if len(f.ValidValues) == 0 {
			alts = append(alts, "[0-9A-Z]"+n(1))
		}
		for _, vv := range f.ValidValues {
			seen[vv] = true
			alts = append(alts, regexp.QuoteMeta(vv))
		}
		for _, e := range custom {
			if !seen[e.Code] {
				seen[e.Code] = true
				alts = append(alts, regexp.QuoteMeta(e.Code))
			}
		}
		body = strings.Join(alts, "|")
	case EncDateDMY8:
		body = "[0-9]{8}"
	case EncDateDMY6:
		body = "[0-9]{6}"
	case EncTimeHHMM:
		body = "[0-9]{4}"
	case EncCoordDM:
		if lat {
			body = "[0-9]{4}[NS]"
		} else {
			body = "[0-9]{5}[EW]"
		}
	case EncCoordDMT:
		if lat {
			body = "[0-9]{5}[NS]"
		} else {
			body = "[0-9]{6}[EW]"
		}
	case EncCoordDMS:
		if lat {
			body = "[+-][0-9]{6}"
		} else {
			body = "[+-][0-9]{7}"
		}
	case EncCoordDecimal:
		body = `-?[0-9]{1,3}\.[0-9]+`
	default:
		return ""
	}

	// "Not recorded" is written as dashes; delimited layouts may leave it blank.
	alt := "-+"
	if !exact {
		alt += "|"
	}
	return "^(?:" + body + "|" + alt + ")$"
}
