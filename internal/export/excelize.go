package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelizeWriter produces the fully styled ledger.
type ExcelizeWriter struct{}

// Name implements Writer.
func (ExcelizeWriter) Name() string { return "excelize" }

type excelizeStyles struct {
	title, header, summary, amount, stripe, stripeAmount int
}

func newExcelizeStyles(f *excelize.File) (excelizeStyles, error) {
	var (
		s   excelizeStyles
		err error
	)
	numFmt := amountFormat
	border := []excelize.Border{
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{titleFill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    border,
		}},
		{&s.summary, &excelize.Style{
			Font:         &excelize.Font{Bold: true},
			Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{summaryFill}},
			CustomNumFmt: &numFmt,
		}},
		{&s.amount, &excelize.Style{CustomNumFmt: &numFmt}},
		{&s.stripe, &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripeFill}},
		}},
		{&s.stripeAmount, &excelize.Style{
			Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripeFill}},
			CustomNumFmt: &numFmt,
		}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.style); err != nil {
			return s, fmt.Errorf("failed to create style: %w", err)
		}
	}
	return s, nil
}

// Write implements Writer.
func (ExcelizeWriter) Write(w io.Writer, doc Document) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newExcelizeStyles(f)
	if err != nil {
		return err
	}

	for r, cells := range doc.Grid() {
		rowNum := r + 1
		for c, value := range cells {
			if value == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, ref, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", ref, err)
			}
		}
		if err := styleExcelizeRow(f, styles, rowNum); err != nil {
			return err
		}
	}

	if err := f.MergeCell(SheetName, "A1", "F1"); err != nil {
		return fmt.Errorf("failed to merge title: %w", err)
	}
	if err := f.SetRowHeight(SheetName, TitleRow, 24); err != nil {
		return fmt.Errorf("failed to size title: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      HeaderRow,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	return f.Write(w)
}

func styleExcelizeRow(f *excelize.File, s excelizeStyles, rowNum int) error {
	setRange := func(fromCol, toCol, style int) error {
		from, err := excelize.CoordinatesToCellName(fromCol, rowNum)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(toCol, rowNum)
		if err != nil {
			return err
		}
		return f.SetCellStyle(SheetName, from, to, style)
	}

	switch {
	case rowNum == TitleRow:
		return setRange(1, Columns, s.title)
	case rowNum == HeaderRow:
		return setRange(1, Columns, s.header)
	case rowNum == SummaryRow || rowNum == TotalsRow:
		return setRange(1, Columns, s.summary)
	}

	plain, amount := 0, s.amount
	if striped(rowNum - FirstData) {
		plain, amount = s.stripe, s.stripeAmount
	}
	for col := 1; col <= Columns; col++ {
		style := plain
		if amountColumn(col - 1) {
			style = amount
		}
		if style == 0 {
			continue
		}
		if err := setRange(col, col, style); err != nil {
			return err
		}
	}
	return nil
}
