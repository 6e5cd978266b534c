package export

import (
	"fmt"

	"github.com/paleoclim/noaapaleo/internal/dataset"
	"github.com/xuri/excelize/v2"
)

const (
	dataSheet   = "Data"
	paramsSheet = "Parameters"
)

// WriteXLSX renders the dataset as an xlsx workbook with two sheets: the
// row grid on "Data" and the parameter dictionary on "Parameters".
func WriteXLSX(ds *dataset.DataSet) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() before WriteToBuffer; the file must stay open.

	index, err := f.NewSheet(dataSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating data sheet: %w", err)
	}
	if _, err := f.NewSheet(paramsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating parameters sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeDataSheet(f, ds, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeParamsSheet(f, ds, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDataSheet(f *excelize.File, ds *dataset.DataSet, headerStyle int) error {
	for i, col := range ds.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(dataSheet, cell, col); err != nil {
			return fmt.Errorf("writing header cell: %w", err)
		}
		if err := f.SetCellStyle(dataSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header cell: %w", err)
		}
	}

	for r, row := range ds.Rows {
		for c, col := range ds.Columns {
			v := row.Get(col)
			if v.IsMissing() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("data cell name: %w", err)
			}
			var value any
			if v.Numeric {
				value = v.Num
			} else {
				value = v.Str
			}
			if err := f.SetCellValue(dataSheet, cell, value); err != nil {
				return fmt.Errorf("writing data cell: %w", err)
			}
		}
	}
	return nil
}

func writeParamsSheet(f *excelize.File, ds *dataset.DataSet, headerStyle int) error {
	headers := []string{"Name", "Long Name", "Unit"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("params header cell name: %w", err)
		}
		if err := f.SetCellValue(paramsSheet, cell, h); err != nil {
			return fmt.Errorf("writing params header: %w", err)
		}
		if err := f.SetCellStyle(paramsSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling params header: %w", err)
		}
	}

	for r, name := range ds.Params.Names() {
		p, _ := ds.Params.Get(name)
		values := []string{p.Name, p.LongName, p.Unit}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("params cell name: %w", err)
			}
			if err := f.SetCellValue(paramsSheet, cell, v); err != nil {
				return fmt.Errorf("writing params cell: %w", err)
			}
		}
	}
	return nil
}
