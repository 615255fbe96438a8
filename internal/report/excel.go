// Package report renders booking listings into spreadsheet form for
// offline fleet administration.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"fleetbook/internal/models"
)

const sheetName = "Bookings"

var columns = []string{
	"ID", "Vehicle", "Start Date", "End Date", "Start Time", "End Time",
	"Purpose", "Booked By", "Passengers", "Status", "Created At",
}

// WriteBookings writes all bookings as a single-sheet workbook, ordered by
// start date then start time for readability.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	sorted := append([]models.Booking(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartDate.Equal(sorted[j].StartDate) {
			return sorted[i].StartDate.Before(sorted[j].StartDate)
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeader(f); err != nil {
		return err
	}

	for i, b := range sorted {
		row := []interface{}{
			b.ID, b.VehicleName, b.StartDate.String(), b.EndDate.String(),
			b.StartTime, b.EndTime, b.Purpose, b.BookedBy, b.Passengers,
			b.Status, b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeHeader(f *excelize.File) error {
	if err := writeRow(f, 1, toAny(columns)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil
	}
	startCell, _ := excelize.CoordinatesToCellName(1, 1)
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, val); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
