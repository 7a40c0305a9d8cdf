package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"KursPajak/internal/model"
)

// SheetName is the worksheet holding the records.
const SheetName = "Sheet1"

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookStrategy builds the workbook cell by cell in memory.
type WorkbookStrategy struct{}

func (WorkbookStrategy) Name() string      { return "excelize" }
func (WorkbookStrategy) Format() Format    { return FormatPrimary }
func (WorkbookStrategy) Extension() string { return ".xlsx" }
func (WorkbookStrategy) MIMEType() string  { return xlsxMIME }

func (WorkbookStrategy) Encode(records []model.RateRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	h := header()
	if err := f.SetSheetRow(SheetName, "A1", &h); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// StreamStrategy writes rows through excelize's stream writer, which does not
// keep the worksheet model in memory.
type StreamStrategy struct{}

func (StreamStrategy) Name() string      { return "excelize-stream" }
func (StreamStrategy) Format() Format    { return FormatPrimary }
func (StreamStrategy) Extension() string { return ".xlsx" }
func (StreamStrategy) MIMEType() string  { return xlsxMIME }

func (StreamStrategy) Encode(records []model.RateRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", header()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row(r)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush stream: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
