// Package export renders the derived inventory as a spreadsheet.
package export

import (
	"io"

	"go-inventory-ledger/internal/model"

	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

var inventoryHeader = []interface{}{"id", "description", "quantity", "loaned"}

// WriteInventory writes entries as an xlsx workbook, one row per item,
// in the order given.
func WriteInventory(w io.Writer, entries []model.InventoryEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), inventorySheet); err != nil {
		return err
	}

	header := inventoryHeader
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.ItemID, e.Description, e.Quantity, e.Loaned}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
