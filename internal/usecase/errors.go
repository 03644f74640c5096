package usecase

import (
	"errors"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
)

// storeError turns a repository error into an AppError. AppErrors raised
// inside a transaction pass through untouched.
func storeError(err error, resource, conflict string) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(resource)
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict(conflict)
	}
	return apperror.Internal("Internal server error", err)
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.ValidationFields(utils.FormatValidationErrors(errs), errs)
	}
	return nil
}

func parseID(value, field string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(value)
	if err != nil {
		return uuid.Nil, apperror.ValidationFields("Invalid "+field, map[string]string{field: "must be a valid UUID"})
	}
	return id, nil
}

// parseRange requires start strictly before end.
func parseRange(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := utils.ParseDate(startValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.ValidationFields("Invalid start date",
			map[string]string{"startDate": "must be YYYY-MM-DD or RFC3339"})
	}
	end, err := utils.ParseDate(endValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.ValidationFields("Invalid end date",
			map[string]string{"endDate": "must be YYYY-MM-DD or RFC3339"})
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperror.ValidationFields("End date must be after start date",
			map[string]string{"endDate": "must be after startDate"})
	}
	return start, end, nil
}
