package analytics

import (
	"io"

	"github.com/tealeg/xlsx"
)

// WriteXLSX writes the report as a workbook with a summary sheet and one sheet
// per series
func WriteXLSX(report Report, w io.Writer) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return err
	}
	addRow(summary, "Timeframe", string(report.Timeframe))
	addRow(summary, "From", report.Start.Format("2006-01-02 15:04:05"))
	addRow(summary, "To", report.End.Format("2006-01-02 15:04:05"))
	addRow(summary, "Items Sold", report.ItemsSold)
	addRow(summary, "Total Sales", report.TotalSales)

	items, err := file.AddSheet("Items Sold")
	if err != nil {
		return err
	}
	addRow(items, "Item", "Quantity")
	for _, b := range report.Bar {
		addRow(items, b.Name, b.Quantity)
	}

	sales, err := file.AddSheet("Sales Over Time")
	if err != nil {
		return err
	}
	addRow(sales, "Period", "Total")
	for _, l := range report.Line {
		addRow(sales, l.Date, l.Total)
	}

	shares, err := file.AddSheet("Share")
	if err != nil {
		return err
	}
	addRow(shares, "Item", "Quantity", "Percent")
	for _, p := range report.Pie {
		addRow(shares, p.Name, p.Value, p.Percent)
	}

	return file.Write(w)
}

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}
