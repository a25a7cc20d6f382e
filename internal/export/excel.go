package export

import (
	"fmt"
	"sort"
	"strings"

	"padelclub/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"Date", "Time", "Duration", "Organizer", "Players",
	"Level", "Type", "Visibility", "Price", "Notes",
}

// Bookings renders the collection as an xlsx workbook, one row per
// booking ordered by date then time. The caller owns closing the file.
func Bookings(bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeHeaders(f); err != nil {
		return nil, err
	}

	sorted := append([]*models.Booking(nil), bookings...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Date < sorted[j].Date
	})

	for i, b := range sorted {
		row := i + 2
		values := []interface{}{
			b.Date,
			b.Time,
			fmt.Sprintf("%d min", b.Duration),
			b.Organizer,
			strings.Join(b.Players, ", "),
			b.Level,
			b.Type,
			b.Visibility,
			b.Price,
			b.Notes,
		}
		for col, v := range values {
			cell, cerr := excelize.CoordinatesToCellName(col+1, row)
			if cerr != nil {
				return nil, cerr
			}
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 12)
	_ = f.SetColWidth(sheetName, "C", "H", 16)
	_ = f.SetColWidth(sheetName, "I", "J", 24)
	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

func writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for col, h := range headers {
		cell, cerr := excelize.CoordinatesToCellName(col+1, 1)
		if cerr != nil {
			return cerr
		}
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
	return nil
}
