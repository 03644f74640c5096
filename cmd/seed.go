package cmd

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

// SeedPassword is shared by every demo account.
const SeedPassword = "password123"

type seedCar struct {
	brand, model, category, fuel, transmission, location string
	year, seats                                           int
	price                                                 float64
}

var seedCars = []seedCar{
	{"Toyota", "Avanza", "MPV", "Petrol", "Manual", "Jakarta", 2022, 7, 350000},
	{"Honda", "Civic", "Sedan", "Petrol", "Automatic", "Jakarta", 2023, 5, 600000},
	{"Hyundai", "Ioniq 5", "SUV", "Electric", "Automatic", "Bandung", 2024, 5, 900000},
	{"Mitsubishi", "Pajero Sport", "SUV", "Diesel", "Automatic", "Surabaya", 2021, 7, 800000},
}

// Seed creates an admin, an owner with approved cars and a renter. Accounts
// that already exist are left untouched.
func Seed(ctx context.Context, repo *repository.Repository, log *zap.Logger) error {
	hash, err := utils.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	if _, _, err := seedUser(ctx, repo, "Admin", "admin@carrental.local", entity.RoleAdmin, hash); err != nil {
		return err
	}
	if _, _, err := seedUser(ctx, repo, "Demo Renter", "renter@carrental.local", entity.RoleUser, hash); err != nil {
		return err
	}
	owner, created, err := seedUser(ctx, repo, "Demo Owner", "owner@carrental.local", entity.RoleOwner, hash)
	if err != nil {
		return err
	}
	if !created {
		log.Info("Seed data already present, skipping cars")
		return nil
	}

	now := time.Now()
	for _, sc := range seedCars {
		car := &entity.Car{
			Base:            entity.NewBase(now),
			OwnerID:         owner.ID,
			Brand:           sc.brand,
			Model:           sc.model,
			Year:            sc.year,
			Category:        sc.category,
			FuelType:        sc.fuel,
			Transmission:    sc.transmission,
			SeatingCapacity: sc.seats,
			Location:        sc.location,
			PricePerDay:     sc.price,
			Features:        []string{"AC", "Bluetooth"},
			IsAvailable:     true,
			IsApproved:      true,
		}
		if err := repo.Car.Create(ctx, car); err != nil {
			return fmt.Errorf("seed car %s %s: %w", sc.brand, sc.model, err)
		}
	}

	log.Info("Seed data created",
		zap.Int("cars", len(seedCars)),
		zap.String("password", SeedPassword),
	)
	return nil
}

func seedUser(ctx context.Context, repo *repository.Repository, name, email string, role entity.UserRole, hash string) (*entity.User, bool, error) {
	existing, err := repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("find seed user %s: %w", email, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("seed user %s: %w", email, err)
	}
	return user, true, nil
}
