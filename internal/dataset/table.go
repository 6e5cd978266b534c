package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// parameterComponents are the positional fields of a "##" declaration
// line: everything after the parameter name, split on commas. Trailing
// components are frequently absent.
var parameterComponents = [...]string{
	"what", "material", "error", "units", "seasonality",
	"archive", "detail", "method", "format",
}

// ErrNotTabular is returned when a file body cannot be interpreted as
// tabular data at all. Callers skip the file and move on.
var ErrNotTabular = errors.New("file is not tabular data")

// Row maps resolved column names to cell values. Columns absent from a
// row read as missing via Get.
type Row map[string]Value

// Get returns the cell for a column, or a missing Value when the row
// does not carry that column.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return NoData()
}

// Table is one parsed data file: the declared parameters keyed by
// resolved column name, the row grid, and the Event the file belongs to.
// Every row carries the Event's label, latitude and longitude as extra
// fields.
type Table struct {
	Params  *ParamSet
	Columns []string
	Rows    []Row
	Event   Event
}

// paramRecord is one parsed "##" declaration: component name → trimmed
// string. Missing trailing components are simply absent.
type paramRecord map[string]string

// ParseTable converts one raw NOAA text file plus its owning Event into a
// Table.
//
// Lines beginning with "##" declare parameters. The header boundary is
// found by the archive's streak accounting: a counter skip and a counter
// gap; every comment line does skip += 1 + gap, gap = 0, every other line
// does gap++. The final skip covers the last contiguous run of comment
// lines and everything before it, and the body is read from that line
// index on as whitespace-delimited columns.
func ParseTable(content string, event Event) (*Table, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	skip := headerSkip(lines)

	var declarations []string
	for _, line := range lines {
		if strings.HasPrefix(line, "##") {
			declarations = append(declarations, strings.TrimPrefix(line, "##"))
		}
	}

	records := parseDeclarations(declarations)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no parameter declarations", ErrNotTabular)
	}

	// Resolve duplicate names into unique column identifiers.
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec["name"]
	}
	resolved := UniqueColumnNames(names)
	for i, rec := range records {
		rec["name"] = resolved[i]
	}

	if skip >= len(lines) {
		return nil, fmt.Errorf("%w: no data body after %d header lines", ErrNotTabular, skip)
	}

	rows := parseBody(lines[skip:], resolved, event)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no parseable data rows", ErrNotTabular)
	}

	return &Table{
		Params:  buildParams(records),
		Columns: tableColumns(resolved),
		Rows:    rows,
		Event:   event,
	}, nil
}

// ParseCSVTable converts a plain CSV file (comma-delimited, ordinary
// header row) plus its owning Event into a Table. CSV files in the
// archive carry no "##" parameter block, so parameters are built from the
// header names alone.
func ParseCSVTable(content string, event Event) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", ErrNotTabular)
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}
	resolved := UniqueColumnNames(header)

	params := NewParamSet()
	for _, name := range resolved {
		params.Set(NewParameter(name, name, ""))
	}

	var rows []Row
	for _, record := range all[1:] {
		if len(record) < len(resolved) {
			continue
		}
		row := make(Row, len(resolved)+3)
		for i, name := range resolved {
			row[name] = parseValue(record[i])
		}
		appendEventColumns(row, event)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no parseable data rows", ErrNotTabular)
	}

	return &Table{
		Params:  params,
		Columns: tableColumns(resolved),
		Rows:    rows,
		Event:   event,
	}, nil
}

// headerSkip counts how many leading lines the tabular reader skips.
// Every comment line extends the covered prefix up to and including
// itself (skip += 1 + gap); non-comment lines only grow the pending gap.
// The final count therefore covers the last contiguous streak of comment
// lines and everything above it, not a cumulative total of comment lines.
func headerSkip(lines []string) int {
	skip := 0
	gap := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			skip += 1 + gap
			gap = 0
		} else {
			gap++
		}
	}
	return skip
}

// parseDeclarations splits "##" lines into parameter records: the first
// whitespace token is the name, the remainder splits on commas into the
// positional components.
func parseDeclarations(declarations []string) []paramRecord {
	var records []paramRecord
	for _, line := range declarations {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		rest := strings.Replace(line, name, "", 1)

		rec := paramRecord{"name": strings.TrimSpace(name)}
		parts := strings.Split(rest, ",")
		for i, component := range parameterComponents {
			if i < len(parts) {
				rec[component] = strings.TrimSpace(parts[i])
			}
		}
		records = append(records, rec)
	}
	return records
}

// parseBody reads the data body as whitespace/tab-delimited text.
// Malformed rows are skipped: too few fields, or no numeric field at all
// (stray header text repeated inside the body). Fields beyond the
// declared parameters are dropped.
func parseBody(body []string, columns []string, event Event) []Row {
	var rows []Row
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) == 0 || len(fields) < len(columns) {
			continue
		}

		row := make(Row, len(columns)+3)
		numeric := 0
		for i, name := range columns {
			v := parseValue(fields[i])
			if v.Numeric {
				numeric++
			}
			row[name] = v
		}
		if numeric == 0 {
			continue
		}
		appendEventColumns(row, event)
		rows = append(rows, row)
	}
	return rows
}

// buildParams turns resolved parameter records into the table's Parameter
// set: "what" is the display name, "units" the unit (canonicalized,
// absent units become the empty string).
func buildParams(records []paramRecord) *ParamSet {
	params := NewParamSet()
	for _, rec := range records {
		params.Set(NewParameter(rec["name"], rec["what"], rec["units"]))
	}
	return params
}

func tableColumns(resolved []string) []string {
	columns := make([]string, 0, len(resolved)+3)
	columns = append(columns, resolved...)
	return append(columns, ColumnEvent, ColumnLatitude, ColumnLongitude)
}

func appendEventColumns(row Row, event Event) {
	row[ColumnEvent] = Text(event.Label)
	row[ColumnLatitude] = Number(event.Latitude)
	row[ColumnLongitude] = Number(event.Longitude)
}
