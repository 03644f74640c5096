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

type CarRepository interface {
	Create(ctx context.Context, car *entity.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	// FindByIDForUpdate locks the car row until the surrounding transaction
	// ends, serializing booking attempts per car.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	FindAll(ctx context.Context, filter entity.CarFilter) ([]*entity.Car, error)
	FindAvailableInRange(ctx context.Context, location string, start, end time.Time) ([]*entity.Car, error)
	Update(ctx context.Context, car *entity.Car) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool, reason *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, ownerID *uuid.UUID) (*entity.CarStats, error)
}

type carRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewCarRepository(db database.DBTX, log *zap.Logger) CarRepository {
	return &carRepository{
		db:  db,
		log: log.With(zap.String("repository", "car")),
	}
}

const carColumns = `c.id, c.owner_id, c.brand, c.model, c.year, c.category, c.fuel_type,
		       c.transmission, c.seating_capacity, c.location, c.price_per_day,
		       c.description, c.features, c.image, c.is_available, c.is_approved,
		       c.rejection_reason, c.created_at, c.updated_at`

func scanCar(row pgx.Row) (*entity.Car, error) {
	var car entity.Car
	err := row.Scan(
		&car.ID,
		&car.OwnerID,
		&car.Brand,
		&car.Model,
		&car.Year,
		&car.Category,
		&car.FuelType,
		&car.Transmission,
		&car.SeatingCapacity,
		&car.Location,
		&car.PricePerDay,
		&car.Description,
		&car.Features,
		&car.Image,
		&car.IsAvailable,
		&car.IsApproved,
		&car.RejectionReason,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	query := `
		INSERT INTO cars (id, owner_id, brand, model, year, category, fuel_type, transmission,
		                  seating_capacity, location, price_per_day, description, features,
		                  image, is_available, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	features := car.Features
	if features == nil {
		features = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		car.ID,
		car.OwnerID,
		car.Brand,
		car.Model,
		car.Year,
		car.Category,
		car.FuelType,
		car.Transmission,
		car.SeatingCapacity,
		car.Location,
		car.PricePerDay,
		car.Description,
		features,
		car.Image,
		car.IsAvailable,
		car.IsApproved,
		car.CreatedAt,
		car.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create car",
			zap.Error(err),
			zap.String("owner_id", car.OwnerID.String()),
		)
		return fmt.Errorf("create car %s %s: %w", car.Brand, car.Model, err)
	}

	return nil
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	return r.findOne(ctx, `SELECT `+carColumns+` FROM cars c WHERE c.id = $1`, id)
}

func (r *carRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	return r.findOne(ctx, `SELECT `+carColumns+` FROM cars c WHERE c.id = $1 FOR UPDATE`, id)
}

func (r *carRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Car, error) {
	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find car by ID",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return nil, classify(fmt.Errorf("find car by ID %s: %w", id.String(), err))
	}
	return car, nil
}

func (r *carRepository) FindAll(ctx context.Context, filter entity.CarFilter) ([]*entity.Car, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("LOWER(c.category) = LOWER($%d)", filter.Category)
	}
	if filter.Transmission != "" {
		add("LOWER(c.transmission) = LOWER($%d)", filter.Transmission)
	}
	if filter.FuelType != "" {
		add("LOWER(c.fuel_type) = LOWER($%d)", filter.FuelType)
	}
	if filter.Location != "" {
		add("c.location ILIKE $%d", containsPattern(filter.Location))
	}
	if filter.MinPrice != nil {
		add("c.price_per_day >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("c.price_per_day <= $%d", *filter.MaxPrice)
	}
	if filter.IsApproved != nil {
		add("c.is_approved = $%d", *filter.IsApproved)
	}
	if filter.IsAvailable != nil {
		add("c.is_available = $%d", *filter.IsAvailable)
	}
	if filter.OwnerID != nil {
		add("c.owner_id = $%d", *filter.OwnerID)
	}
	if filter.Query != "" {
		args = append(args, containsPattern(filter.Query))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(c.brand ILIKE $%d OR c.model ILIKE $%d OR c.category ILIKE $%d OR c.location ILIKE $%d)", n, n, n, n))
	}

	query := `SELECT ` + carColumns + ` FROM cars c`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

	return r.findMany(ctx, "find cars", query, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE substring pattern that matches input literally.
func containsPattern(input string) string {
	return "%" + likeEscaper.Replace(input) + "%"
}

// FindAvailableInRange returns bookable cars at location with no confirmed or
// active booking touching [start, end].
func (r *carRepository) FindAvailableInRange(ctx context.Context, location string, start, end time.Time) ([]*entity.Car, error) {
	query := `
		SELECT ` + carColumns + `
		FROM cars c
		WHERE c.is_approved = TRUE
		  AND c.is_available = TRUE
		  AND c.location ILIKE $1
		  AND NOT EXISTS (
		      SELECT 1 FROM bookings b
		      WHERE b.car_id = c.id
		        AND b.status IN ('confirmed', 'active')
		        AND b.start_date <= $3
		        AND b.end_date >= $2
		  )
		ORDER BY c.created_at DESC
	`

	return r.findMany(ctx, "find available cars", query, containsPattern(location), start, end)
}

func (r *carRepository) findMany(ctx context.Context, op, query string, args ...any) ([]*entity.Car, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query cars", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var cars []*entity.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			r.log.Error("Failed to scan car row", zap.Error(err))
			return nil, fmt.Errorf("scan car row: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate car rows: %w", err)
	}
	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	query := `
		UPDATE cars
		SET brand = $2, model = $3, year = $4, category = $5, fuel_type = $6,
		    transmission = $7, seating_capacity = $8, location = $9, price_per_day = $10,
		    description = $11, features = $12, image = $13, is_available = $14,
		    updated_at = $15
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		car.ID,
		car.Brand,
		car.Model,
		car.Year,
		car.Category,
		car.FuelType,
		car.Transmission,
		car.SeatingCapacity,
		car.Location,
		car.PricePerDay,
		car.Description,
		car.Features,
		car.Image,
		car.IsAvailable,
		car.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update car", zap.Error(err), zap.String("car_id", car.ID.String()))
		return classify(fmt.Errorf("update car %s: %w", car.ID.String(), err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %s: %w", car.ID.String(), ErrNotFound)
	}
	return nil
}

func (r *carRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE cars SET is_available = $2, updated_at = NOW() WHERE id = $1`, id, available)
	if err != nil {
		r.log.Error("Failed to set car availability",
			zap.Error(err),
			zap.String("car_id", id.String()),
			zap.Bool("available", available),
		)
		return classify(fmt.Errorf("set availability of car %s: %w", id.String(), err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %s: %w", id.String(), ErrNotFound)
	}
	return nil
}

func (r *carRepository) SetApproval(ctx context.Context, id uuid.UUID, approved bool, reason *string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE cars SET is_approved = $2, rejection_reason = $3, updated_at = NOW() WHERE id = $1`,
		id, approved, reason)
	if err != nil {
		r.log.Error("Failed to set car approval", zap.Error(err), zap.String("car_id", id.String()))
		return fmt.Errorf("set approval of car %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %s: %w", id.String(), ErrNotFound)
	}
	return nil
}

func (r *carRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete car", zap.Error(err), zap.String("car_id", id.String()))
		return fmt.Errorf("delete car %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %s: %w", id.String(), ErrNotFound)
	}
	return nil
}

// Stats counts cars, optionally only those of one owner.
func (r *carRepository) Stats(ctx context.Context, ownerID *uuid.UUID) (*entity.CarStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_approved),
		       COUNT(*) FILTER (WHERE NOT is_approved),
		       COUNT(*) FILTER (WHERE is_available AND is_approved)
		FROM cars
		WHERE ($1::uuid IS NULL OR owner_id = $1)
	`

	var stats entity.CarStats
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&stats.Total,
		&stats.Approved,
		&stats.PendingApproval,
		&stats.Available,
	)
	if err != nil {
		r.log.Error("Failed to count cars", zap.Error(err))
		return nil, fmt.Errorf("car stats: %w", err)
	}

	return &stats, nil
}
