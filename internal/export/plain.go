package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"
)

// PlainWriter produces the same ledger with minimal styling. It is the
// fallback when the styled writer fails.
type PlainWriter struct{}

// Name implements Writer.
func (PlainWriter) Name() string { return "xlsx" }

func plainStyle(bold bool, fill string) *xlsx.Style {
	style := xlsx.NewStyle()
	if bold {
		style.Font.Bold = true
		style.ApplyFont = true
	}
	if fill != "" {
		style.Fill = *xlsx.NewFill("solid", "FF"+fill, "FF"+fill)
		style.ApplyFill = true
	}
	return style
}

// Write implements Writer.
func (PlainWriter) Write(w io.Writer, doc Document) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold := plainStyle(true, "")
	stripe := plainStyle(false, stripeFill)

	for r, cells := range doc.Grid() {
		rowNum := r + 1
		row := sheet.AddRow()

		var style *xlsx.Style
		switch {
		case rowNum <= TotalsRow:
			style = bold
		case striped(rowNum - FirstData):
			style = stripe
		}

		for c, value := range cells {
			cell := row.AddCell()
			switch v := value.(type) {
			case string:
				cell.SetString(v)
			case float64:
				cell.SetFloatWithFormat(v, amountFormat)
			}
			if style != nil {
				cell.SetStyle(style)
			}
			if rowNum == TitleRow && c == 0 {
				cell.Merge(Columns-1, 0)
			}
		}
	}

	for i, width := range columnWidths {
		sheet.SetColWidth(i+1, i+1, width)
	}

	return file.Write(w)
}
