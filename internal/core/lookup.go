package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Table returns the lookup table for (field, version): a custom override if
// present, else the built-in default, else the field's valid values.
func (s *Snapshot) Table(field, version string) (LookupTable, error) {
	cv, ok := s.versions[version]
	if !ok {
		return LookupTable{}, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	def, ok := cv.Field(field)
	if !ok {
		return LookupTable{}, fmt.Errorf("%w: %s in %s", ErrUnknownField, field, version)
	}

	t := LookupTable{Field: field, Version: version}
	if entries, ok := s.custom[version][field]; ok {
		t.Source = SourceCustom
		t.Entries = cloneEntries(entries)
		return t, nil
	}
	if entries, ok := s.defaults[version][field]; ok {
		t.Source = SourceDefault
		t.Entries = cloneEntries(entries)
		return t, nil
	}

	t.Source = SourceValidValues
	t.Entries = make([]LookupEntry, 0, len(def.ValidValues))
	for _, code := range def.ValidValues {
		t.Entries = append(t.Entries, LookupEntry{Code: code})
	}
	return t, nil
}

// table is the allocation-free variant used on the hot path. The returned
// slice must not be modified.
func (s *Snapshot) table(field, version string) []LookupEntry {
	if entries, ok := s.custom[version][field]; ok {
		return entries
	}
	if entries, ok := s.defaults[version][field]; ok {
		return entries
	}
	cv, ok := s.versions[version]
	if !ok {
		return nil
	}
	def, ok := cv.Field(field)
	if !ok || len(def.ValidValues) == 0 {
		return nil
	}
	out := make([]LookupEntry, len(def.ValidValues))
	for i, code := range def.ValidValues {
		out[i] = LookupEntry{Code: code}
	}
	return out
}

// Table returns the current lookup table for (field, version).
func (c *Catalog) Table(field, version string) (LookupTable, error) {
	return c.Snapshot().Table(field, version)
}

// UpdateTable merges entries into the (field, version) table, or replaces it
// when replace is set. Codes not mentioned in a merge keep their meaning.
// The change is persisted before the new snapshot is published.
func (c *Catalog) UpdateTable(ctx context.Context, field, version string, entries []LookupEntry, replace bool) (LookupTable, error) {
	if err := validateEntries(entries); err != nil {
		return LookupTable{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.Snapshot()
	existing, err := cur.Table(field, version)
	if err != nil {
		return LookupTable{}, err
	}

	var next []LookupEntry
	if replace {
		next = mergeEntries(nil, entries)
	} else {
		next = mergeEntries(existing.Entries, entries)
	}

	custom := make(map[string]map[string][]LookupEntry, len(cur.custom)+1)
	for v, fields := range cur.custom {
		custom[v] = fields
	}
	fields := make(map[string][]LookupEntry, len(custom[version])+1)
	for f, e := range custom[version] {
		fields[f] = e
	}
	fields[field] = next
	custom[version] = fields

	snap, err := cur.withCustom(custom)
	if err != nil {
		return LookupTable{}, err
	}

	if c.store != nil {
		cv := cur.versions[version]
		entry := CatalogEntry{
			Version:   cv.EuringVersion,
			Lookups:   fields,
			UpdatedAt: time.Now().UTC(),
		}
		if err := c.store.Save(ctx, entry); err != nil {
			return LookupTable{}, fmt.Errorf("save catalog %s: %w", version, err)
		}
	}

	c.publish(snap)

	slog.Info("lookup table updated",
		"version", version,
		"field", field,
		"entries", len(next),
		"replace", replace,
		"generation", snap.generation,
	)

	return LookupTable{Field: field, Version: version, Source: SourceCustom, Entries: cloneEntries(next)}, nil
}

func validateEntries(entries []LookupEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("lookup update requires at least one entry")
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		if code == "" {
			return fmt.Errorf("lookup code must not be empty")
		}
		if seen[code] {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		seen[code] = true
	}
	return nil
}

// mergeEntries keeps the order of base, updates meanings in place and
// appends new codes in update order.
func mergeEntries(base, updates []LookupEntry) []LookupEntry {
	out := cloneEntries(base)
	index := make(map[string]int, len(out))
	for i, e := range out {
		index[e.Code] = i
	}
	for _, u := range updates {
		u.Code = strings.TrimSpace(u.Code)
		if i, ok := index[u.Code]; ok {
			out[i].Meaning = u.Meaning
			continue
		}
		index[u.Code] = len(out)
		out = append(out, u)
	}
	return out
}

func cloneEntries(in []LookupEntry) []LookupEntry {
	out := make([]LookupEntry, len(in))
	copy(out, in)
	return out
}
