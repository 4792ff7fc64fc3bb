package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/specialistvlad/sheetcalc/internal/coord"
	"github.com/specialistvlad/sheetcalc/internal/engine"
	"github.com/specialistvlad/sheetcalc/internal/result"
)

// Render writes records as a table or as the JSON response mapping.
func Render(w io.Writer, records map[string]result.Record, format string) error {
	if format == FormatJSON {
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "(0 cells)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Cell", "Kind", "Value"})
	for _, key := range sortedKeys(records) {
		r := records[key]
		t.AppendRow(table.Row{key, string(r.Kind), r.Display()})
	}
	t.Render()
	return nil
}

// cellReport is the JSON shape of one cell in a dependency report.
type cellReport struct {
	Record     result.Record `json:"result"`
	Precedents []string      `json:"precedents"`
	Dependents []string      `json:"dependents"`
	Circular   bool          `json:"circular"`
	Origin     string        `json:"origin,omitempty"`
}

// RenderAnalysis writes the dependency report of a pass: every cell with the
// names it references, the cells referencing it and whether it is part of a
// circular reference.
func RenderAnalysis(w io.Writer, a *engine.Analysis, format string) error {
	circular := make(map[string]bool, len(a.Circular))
	for _, key := range a.Circular {
		circular[key] = true
	}

	if format == FormatJSON {
		report := make(map[string]cellReport, len(a.Records))
		for key, r := range a.Records {
			report[key] = cellReport{
				Record:     r,
				Precedents: nonNil(a.Precedents(key)),
				Dependents: nonNil(a.Dependents(key)),
				Circular:   circular[key],
				Origin:     a.Origins[key],
			}
		}
		return writeJSON(w, map[string]any{
			"cells":    report,
			"cycles":   nonNilCycles(a.Graph.Cycles()),
			"external": nonNil(a.External),
		})
	}

	if len(a.Records) == 0 {
		_, err := fmt.Fprintln(w, "(0 cells)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Cell", "Kind", "Precedents", "Dependents", "Circular", "Origin"})
	for _, key := range sortedKeys(a.Records) {
		mark := ""
		if circular[key] {
			mark = "yes"
		}
		t.AppendRow(table.Row{
			key,
			string(a.Records[key].Kind),
			strings.Join(a.Precedents(key), ", "),
			strings.Join(a.Dependents(key), ", "),
			mark,
			a.Origins[key],
		})
	}
	t.Render()

	for _, cycle := range a.Graph.Cycles() {
		if _, err := fmt.Fprintf(w, "cycle: %s\n", strings.Join(cycle, " -> ")); err != nil {
			return err
		}
	}
	if len(a.External) > 0 {
		if _, err := fmt.Fprintf(w, "external: %s\n", strings.Join(a.External, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func sortedKeys(records map[string]result.Record) []string {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	coord.Sort(keys)
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCycles(c [][]string) [][]string {
	if c == nil {
		return [][]string{}
	}
	return c
}
