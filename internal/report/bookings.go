// Package report renders admin exports as XLSX workbooks.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"car-rental/internal/data/entity"

	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

var bookingHeaders = []string{
	"Booking Code", "Status", "Payment", "Car", "Location",
	"Renter ID", "Owner ID", "Start", "End", "Days", "Price/Day", "Total", "Created",
}

// Export is a rendered workbook ready to be streamed or stored.
type Export struct {
	FileName string
	Data     []byte
}

// BookingsWorkbook writes one row per booking. cars resolves car labels and
// may miss entries for deleted cars.
func BookingsWorkbook(bookings []*entity.Booking, cars map[string]*entity.Car, generatedAt time.Time) (*Export, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	_ = f.SetCellStyle(bookingsSheet, "A1", lastCol+"1", headerStyle)

	var revenue float64
	for i, b := range bookings {
		row := i + 2
		carLabel, location := b.CarID.String(), ""
		if car, ok := cars[b.CarID.String()]; ok {
			carLabel = fmt.Sprintf("%s %s (%d)", car.Brand, car.Model, car.Year)
			location = car.Location
		}

		values := []any{
			b.BookingCode,
			string(b.Status),
			string(b.PaymentStatus),
			carLabel,
			location,
			b.UserID.String(),
			b.OwnerID.String(),
			b.StartDate.Format("2006-01-02"),
			b.EndDate.Format("2006-01-02"),
			b.TotalDays,
			b.PricePerDay,
			b.TotalAmount,
			b.CreatedAt.Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(bookingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}

		if b.Status == entity.BookingStatusCompleted {
			revenue += b.TotalAmount
		}
	}

	totalRow := len(bookings) + 3
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("K%d", totalRow), "Revenue")
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("L%d", totalRow), revenue)

	_ = f.SetColWidth(bookingsSheet, "A", "A", 28)
	_ = f.SetColWidth(bookingsSheet, "B", "E", 18)
	_ = f.SetColWidth(bookingsSheet, "F", "G", 38)
	_ = f.SetColWidth(bookingsSheet, "H", "M", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	return &Export{
		FileName: fmt.Sprintf("bookings_%s.xlsx", generatedAt.Format("20060102_150405")),
		Data:     buf.Bytes(),
	}, nil
}

// Save stores the export under dir and returns its path.
func Save(dir string, export *Export) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, export.FileName)
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
