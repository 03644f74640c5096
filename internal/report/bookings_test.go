package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"car-rental/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBookings() ([]*entity.Booking, map[string]*entity.Car) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	car := &entity.Car{Base: entity.NewBase(now), Brand: "Toyota", Model: "Corolla", Year: 2022, Location: "Berlin"}

	completed := &entity.Booking{
		Base:          entity.NewBase(now),
		BookingCode:   "RENT-20250601-090000-0001",
		CarID:         car.ID,
		UserID:        uuid.New(),
		OwnerID:       uuid.New(),
		StartDate:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		TotalDays:     2,
		PricePerDay:   100,
		TotalAmount:   200,
		Status:        entity.BookingStatusCompleted,
		PaymentStatus: entity.PaymentStatusPaid,
	}
	orphan := *completed
	orphan.Base = entity.NewBase(now)
	orphan.BookingCode = "RENT-20250601-090000-0002"
	orphan.CarID = uuid.New()
	orphan.Status = entity.BookingStatusPending

	return []*entity.Booking{completed, &orphan}, map[string]*entity.Car{car.ID.String(): car}
}

func TestBookingsWorkbook(t *testing.T) {
	bookings, cars := sampleBookings()
	generated := time.Date(2025, 6, 20, 14, 30, 0, 0, time.UTC)

	export, err := BookingsWorkbook(bookings, cars, generated)
	require.NoError(t, err)
	assert.Equal(t, "bookings_20250620_143000.xlsx", export.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, bookingHeaders, rows[0])
	assert.Equal(t, "RENT-20250601-090000-0001", rows[1][0])
	assert.Equal(t, "Toyota Corolla (2022)", rows[1][3])
	assert.Equal(t, "2025-06-10", rows[1][7])
	// Unknown cars fall back to the car ID.
	assert.Equal(t, bookings[1].CarID.String(), rows[2][3])

	revenue, err := f.GetCellValue(bookingsSheet, "L5")
	require.NoError(t, err)
	assert.Equal(t, "200", revenue)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := Save(dir, &Export{FileName: "x.xlsx", Data: []byte("data")})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))
}
