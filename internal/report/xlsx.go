package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/seo-leads/internal/model"
)

// Columns is the header row shared by the lead table and export.
var Columns = []string{
	"Website", "Name", "Email", "Phone", "Address", "Country", "City", "Zip",
	"Facebook", "Instagram", "Twitter/X", "LinkedIn", "Youtube",
	"Date Captured", "Date Updated",
}

// Row flattens a lead in Columns order.
func Row(l model.Lead) []string {
	return []string{
		l.Website, l.Name, l.Email, l.Phone, l.Address, l.Country, l.City, l.Zip,
		l.Facebook, l.Instagram, l.Twitter, l.LinkedIn, l.YouTube,
		l.DateCaptured, l.DateUpdated,
	}
}

// LeadsSheet is the sheet name used by exports.
const LeadsSheet = "Leads"

// BuildLeadsWorkbook creates a workbook with one header row and one row per lead.
func BuildLeadsWorkbook(leads []model.Lead) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(LeadsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, Columns)
	for _, l := range leads {
		addRow(sheet, Row(l))
	}
	return f, nil
}

// ExportLeads writes the leads workbook to path.
func ExportLeads(path string, leads []model.Lead) error {
	f, err := BuildLeadsWorkbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Save(path), "xlsx: save")
}

// WriteLeads streams the leads workbook to w.
func WriteLeads(w io.Writer, leads []model.Lead) error {
	f, err := BuildLeadsWorkbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
