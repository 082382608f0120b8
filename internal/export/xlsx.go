package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/quartierlabs/rentmap/internal/pipeline"
)

// WriteXLSX writes one workbook row per line item, keeping the aggregator's
// neighborhood and line-item ordering.
func WriteXLSX(path string, res *pipeline.Result) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Loyers")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Quartier", "Accessible", "Pièces", "Époque",
		"Loyer €/m²", "Loyer estimé €", "Dans le budget",
	} {
		header.AddCell().Value = h
	}

	for _, s := range res.Summaries {
		for _, li := range s.LineItems {
			row := sheet.AddRow()
			row.AddCell().Value = s.Name
			row.AddCell().SetBool(s.Accessible)
			row.AddCell().SetInt(li.RoomCount)
			row.AddCell().Value = li.ConstructionEra
			row.AddCell().SetFloat(li.RentPerM2)
			row.AddCell().SetFloat(li.EstimatedRent)
			row.AddCell().SetBool(li.WithinBudget)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
