// Package export выгружает состояние банка крови в Excel
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"bloodlink/services/matching-svc/internal/engine"
)

const (
	SheetInventory = "Inventory"
	SheetRequests  = "Requests"
	SheetDonors    = "Donors"

	timeLayout = "2006-01-02 15:04"
)

// Filename имя файла выгрузки на момент at
func Filename(at time.Time) string {
	return "bloodlink-" + at.UTC().Format("20060102-150405") + ".xlsx"
}

// WriteWorkbook пишет снимок в .xlsx: остатки, запросы и доноры
func WriteWorkbook(w io.Writer, snap engine.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw := &sheetWriter{f: f, headerStyle: headerStyle}

	// первый лист переименовываем, чтобы не оставлять пустой Sheet1
	if err := f.SetSheetName("Sheet1", SheetInventory); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	sw.header(SheetInventory, "Blood Type", "Total", "Reserved", "Available")
	for i, e := range snap.Inventory {
		sw.row(SheetInventory, i+2, e.BloodType.String(), e.Total, e.Reserved, e.Available())
	}

	sw.sheet(SheetRequests)
	sw.header(SheetRequests, "ID", "Blood Type", "Units", "Location", "Priority", "Status",
		"Source", "Donor", "Distance (km)", "Hospital", "Created", "Updated")
	for i, r := range snap.Requests {
		donor := ""
		if r.MatchedDonor != nil {
			donor = r.MatchedDonor.Name
		}
		sw.row(SheetRequests, i+2, r.ID, r.BloodType.String(), r.Units, r.LocationID, r.Priority.String(),
			r.Status.String(), r.Source.String(), donor, r.Distance, r.Hospital,
			r.CreatedAt.Format(timeLayout), r.UpdatedAt.Format(timeLayout))
	}

	sw.sheet(SheetDonors)
	sw.header(SheetDonors, "ID", "Name", "Blood Type", "Location", "Available", "Phone")
	for i, d := range snap.Donors {
		sw.row(SheetDonors, i+2, d.ID, d.Name, d.BloodType.String(), d.LocationID, d.Available, d.Phone)
	}

	if sw.err != nil {
		return sw.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter запоминает первую ошибку excelize
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (sw *sheetWriter) sheet(name string) {
	if sw.err != nil {
		return
	}
	if _, err := sw.f.NewSheet(name); err != nil {
		sw.err = fmt.Errorf("create sheet %s: %w", name, err)
	}
}

func (sw *sheetWriter) header(sheet string, titles ...string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	sw.row(sheet, 1, values...)
	if sw.err != nil {
		return
	}

	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		sw.err = err
		return
	}
	if err := sw.f.SetCellStyle(sheet, "A1", last, sw.headerStyle); err != nil {
		sw.err = fmt.Errorf("style %s header: %w", sheet, err)
	}
}

func (sw *sheetWriter) row(sheet string, row int, values ...any) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		sw.err = err
		return
	}
	if err := sw.f.SetSheetRow(sheet, cell, &values); err != nil {
		sw.err = fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
}
