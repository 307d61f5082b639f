package export

import (
	"io"
)

// Writer serializes a Document as an .xlsx workbook.
type Writer interface {
	Name() string
	Write(w io.Writer, doc Document) error
}

// Number format for amount columns.
const amountFormat = "#,##0"

// Fill colors.
const (
	titleFill   = "1F4E78"
	headerFill  = "DDEBF7"
	summaryFill = "FFF2CC"
	stripeFill  = "F2F2F2"
)

// amountColumn reports whether a 0-based column holds amounts.
func amountColumn(col int) bool {
	return col == 2 || col == 5
}

// striped reports whether a 0-based data row index gets the tint.
func striped(dataIndex int) bool {
	return dataIndex%2 == 1
}

// columnWidths are the sheet column widths in characters.
var columnWidths = [Columns]float64{14, 32, 16, 14, 32, 16}
