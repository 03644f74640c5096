package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error)

	// Business queries
	FindBlocking(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error)
	ExistsForCar(ctx context.Context, carID uuid.UUID, statuses []entity.BookingStatus, excludeID *uuid.UUID) (bool, error)
	FindByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []entity.BookingStatus) ([]*entity.Booking, error)
	FindStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
	Stats(ctx context.Context, ownerID *uuid.UUID) (*entity.BookingStats, error)
}

type bookingRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewBookingRepository(db database.DBTX, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_code, user_id, car_id, owner_id, start_date, end_date,
		       total_days, price_per_day, total_amount, status, payment_status,
		       payment_method, pickup_location, dropoff_location, special_requests,
		       created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.BookingCode,
		&b.UserID,
		&b.CarID,
		&b.OwnerID,
		&b.StartDate,
		&b.EndDate,
		&b.TotalDays,
		&b.PricePerDay,
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.PickupLocation,
		&b.DropoffLocation,
		&b.SpecialRequests,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_code, user_id, car_id, owner_id, start_date, end_date,
		                      total_days, price_per_day, total_amount, status, payment_status,
		                      payment_method, pickup_location, dropoff_location, special_requests,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingCode,
		booking.UserID,
		booking.CarID,
		booking.OwnerID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalDays,
		booking.PricePerDay,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.PickupLocation,
		booking.DropoffLocation,
		booking.SpecialRequests,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
			zap.String("car_id", booking.CarID.String()),
		)
		return classify(fmt.Errorf("create booking %s: %w", booking.BookingCode, err))
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, classify(fmt.Errorf("find booking by ID %s: %w", id.String(), err))
	}
	return booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.PaymentStatus != nil {
		add("payment_status = $%d", string(*filter.PaymentStatus))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.OwnerID != nil {
		add("owner_id = $%d", *filter.OwnerID)
	}
	if filter.CarID != nil {
		add("car_id = $%d", *filter.CarID)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.findMany(ctx, "find bookings", query, args...)
}

// FindBlocking returns confirmed or active bookings of the car whose range
// touches [start, end], skipping excludeID.
func (r *bookingRepository) FindBlocking(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1
		  AND status = ANY($2)
		  AND start_date <= $4
		  AND end_date >= $3
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY start_date
	`

	return r.findMany(ctx, "find blocking bookings", query,
		carID, statusStrings(entity.BlockingStatuses), start, end, excludeID)
}

func (r *bookingRepository) ExistsForCar(ctx context.Context, carID uuid.UUID, statuses []entity.BookingStatus, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
		    SELECT 1 FROM bookings
		    WHERE car_id = $1 AND status = ANY($2) AND ($3::uuid IS NULL OR id <> $3)
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, carID, statusStrings(statuses), excludeID).Scan(&exists); err != nil {
		r.log.Error("Failed to check bookings of car", zap.Error(err), zap.String("car_id", carID.String()))
		return false, classify(fmt.Errorf("check bookings of car %s: %w", carID.String(), err))
	}
	return exists, nil
}

func (r *bookingRepository) FindByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []entity.BookingStatus) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, "find bookings of user", query, userID, statusStrings(statuses))
}

func (r *bookingRepository) FindStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
	`
	return r.findMany(ctx, "find stale pending bookings", query, createdBefore)
}

func (r *bookingRepository) findMany(ctx context.Context, op, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.Error(err), zap.String("op", op))
		return nil, classify(fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate booking rows: %w", err))
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return classify(fmt.Errorf("update status of booking %s: %w", id.String(), err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	return nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return classify(fmt.Errorf("update payment of booking %s: %w", id.String(), err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	return nil
}

func (r *bookingRepository) Stats(ctx context.Context, ownerID *uuid.UUID) (*entity.BookingStats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)::float8
		FROM bookings
		WHERE ($1::uuid IS NULL OR owner_id = $1)
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.log.Error("Failed to aggregate bookings", zap.Error(err))
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.BookingStats{ByStatus: make(map[entity.BookingStatus]int64)}
	for rows.Next() {
		var (
			status entity.BookingStatus
			count  int64
			amount float64
		)
		if err := rows.Scan(&status, &count, &amount); err != nil {
			return nil, fmt.Errorf("scan booking stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
		if status == entity.BookingStatusCompleted {
			stats.Revenue = amount
		}
	}

	return stats, rows.Err()
}
