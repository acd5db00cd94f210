// Package spreadsheet renders action exports as xlsx workbooks.
package spreadsheet

import (
	"github.com/xuri/excelize/v2"
)

const SheetName = "Ações"

var Columns = []string{
	"Assunto", "Status", "Responsável", "Empresa", "Cliente",
	"Solicitante", "Início", "Término", "Concluída em",
}

// Row is one exported action with its references already resolved to names.
type Row struct {
	Subject     string
	Status      string
	Responsible string
	Company     string
	Client      string
	Requester   string
	StartDate   string
	EndDate     string
	CompletedAt string
}

func (r *Row) values() []any {
	return []any{
		r.Subject, r.Status, r.Responsible, r.Company, r.Client,
		r.Requester, r.StartDate, r.EndDate, r.CompletedAt,
	}
}

// WriteActions returns the workbook bytes for the given rows.
func WriteActions(rows []*Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, col); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		vals := row.values()
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return nil, err
		}
	}

	for i := range Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, 20)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
