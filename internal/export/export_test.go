package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/paleoclim/noaapaleo/internal/dataset"
	"github.com/xuri/excelize/v2"
)

func sampleDataSet(t *testing.T) *dataset.DataSet {
	t.Helper()
	event := dataset.NewEvent("Site A", -69.5, -15.8)
	table, err := dataset.ParseTable(`## depth	depth below surface,,,cm,,,,,
## age	calendar age,,,cal ka BP,,,,,
1	0.5
2	-999.00
`, event)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	ds := dataset.NewDataSet("12345")
	ds.Title = "Example Study"
	ds.AddEvent(event)
	ds.AppendTable(table)
	return ds
}

func TestWriteCSV(t *testing.T) {
	ds := sampleDataSet(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced csv: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2 rows", len(records))
	}

	wantHeader := []string{"depth", "age", "Event", "Latitude", "Longitude"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}

	if records[1][0] != "1" || records[1][1] != "0.5" || records[1][2] != "Site A" {
		t.Errorf("row 1 = %v", records[1])
	}
	// Sentinel value renders as an empty field, never -999.
	if records[2][1] != "" {
		t.Errorf("missing cell = %q, want empty", records[2][1])
	}
}

func TestWriteXLSX(t *testing.T) {
	ds := sampleDataSet(t)

	blob, err := WriteXLSX(ds)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("opening produced workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Data")
	if err != nil {
		t.Fatalf("GetRows(Data) error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Data rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "depth" || rows[0][2] != "Event" {
		t.Errorf("Data header = %v", rows[0])
	}
	if rows[1][2] != "Site A" {
		t.Errorf("Data row 1 = %v", rows[1])
	}

	params, err := f.GetRows("Parameters")
	if err != nil {
		t.Fatalf("GetRows(Parameters) error = %v", err)
	}
	if len(params) != 3 {
		t.Fatalf("Parameters rows = %d, want header + 2", len(params))
	}
	// Unit canonicalized during parsing carries into the export.
	if params[2][0] != "age" || params[2][2] != "ka BP" {
		t.Errorf("Parameters row = %v", params[2])
	}
}
