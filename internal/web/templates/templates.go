// Package templates holds the templ components served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/euring/internal/core"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}` +
	`table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #d1d5db;padding:.35rem .6rem;text-align:left}` +
	`th{background:#f3f4f6}.full{background:#dcfce7}.partial{background:#fef9c3}.limited{background:#ffedd5}.none{background:#fee2e2}` +
	`.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;border-radius:.375rem}code{font-size:.9em}`

// Index renders the overview page: supported versions and the conversion matrix.
func Index(v core.VersionsResponse, generation uint64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>EURING record converter</title><style>%s</style></head><body>`, pageStyle)
		p.printf(`<h1>EURING record converter</h1><p>Catalog generation %d</p>`, generation)

		p.printf(`<h2>Supported versions</h2><table><thead><tr><th>ID</th><th>Year</th><th>Name</th><th>Layout</th><th>Length</th><th>Fields</th></tr></thead><tbody>`)
		for _, sv := range v.SupportedVersions {
			layout := string(sv.Layout)
			if sv.Separator != "" {
				layout += fmt.Sprintf(" (%q)", sv.Separator)
			}
			p.printf(`<tr><td><code>%s</code></td><td>%d</td><td>%s</td><td>%s</td><td>%d&ndash;%d</td><td>%d</td></tr>`,
				esc(sv.ID), sv.Year, esc(sv.Name), esc(layout), sv.MinLength, sv.MaxLength, sv.FieldCount)
		}
		p.printf(`</tbody></table>`)

		ids := make([]string, 0, len(v.SupportedVersions))
		for _, sv := range v.SupportedVersions {
			ids = append(ids, sv.ID)
		}
		if len(ids) == 0 {
			ids = matrixKeys(v.ConversionMatrix)
		}

		p.printf(`<h2>Conversion matrix</h2><table><thead><tr><th>from \ to</th>`)
		for _, id := range ids {
			p.printf(`<th>%s</th>`, esc(id))
		}
		p.printf(`</tr></thead><tbody>`)
		for _, src := range ids {
			p.printf(`<tr><th>%s</th>`, esc(src))
			for _, dst := range ids {
				cell, ok := v.ConversionMatrix[src][dst]
				if !ok {
					p.printf(`<td>&ndash;</td>`)
					continue
				}
				p.printf(`<td class="%s" title="full %d, partial %d, lossy %d, none %d">%s</td>`,
					esc(string(cell.Compatibility)), cell.Full, cell.Partial, cell.Lossy, cell.None, esc(string(cell.Compatibility)))
			}
			p.printf(`</tr>`)
		}
		p.printf(`</tbody></table>`)
		p.printf(`<p>JSON API under <code>/api</code>. Metrics at <code>/metrics</code>.</p></body></html>`)
		return p.err
	})
}

// ErrorAlert renders an error fragment with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<div class="alert" role="alert"><strong>%s</strong>`, esc(message))
		if action != "" {
			p.printf(`<p>%s</p>`, esc(action))
		}
		p.printf(`<small>Error code: %s</small></div>`, esc(code))
		return p.err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func matrixKeys(m map[string]map[string]core.MatrixCell) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
