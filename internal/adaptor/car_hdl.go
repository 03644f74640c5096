package adaptor

import (
	"net/http"

	"car-rental/internal/data/entity"
	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CarHandler struct {
	service      usecase.CarService
	availability usecase.AvailabilityService
	log          *zap.Logger
}

func NewCarHandler(service usecase.CarService, availability usecase.AvailabilityService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		service:      service,
		availability: availability,
		log:          log.With(zap.String("handler", "car")),
	}
}

// carFilterFromQuery reads the catalogue filters shared by public and admin listings.
func carFilterFromQuery(r *http.Request) entity.CarFilter {
	q := r.URL.Query()
	return entity.CarFilter{
		Category:     q.Get("category"),
		Transmission: q.Get("transmission"),
		FuelType:     q.Get("fuel_type"),
		Location:     q.Get("location"),
		MinPrice:     utils.ParseFloat(q.Get("minPrice")),
		MaxPrice:     utils.ParseFloat(q.Get("maxPrice")),
		Query:        q.Get("q"),
	}
}

// ==================== PUBLIC ====================

// ListCars handles GET /api/cars
func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.ListCars(r.Context(), carFilterFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list cars")
		return
	}
	utils.ResponseSuccessAs(w, "Cars retrieved successfully", "cars", cars)
}

// SearchCars handles GET /api/cars/search?q=
func (h *CarHandler) SearchCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.SearchCars(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, h.log, err, "search cars")
		return
	}
	utils.ResponseSuccessAs(w, "Cars retrieved successfully", "cars", cars)
}

// GetCar handles GET /api/cars/{id}
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	var actor *usecase.Actor
	if a, ok := actorFrom(r); ok {
		actor = &a
	}

	car, err := h.service.GetCar(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get car")
		return
	}
	utils.ResponseSuccessAs(w, "Car retrieved successfully", "car", car)
}

type rangeQuery struct {
	CarID     string `json:"carId"`
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// readRangeQuery reads the query string, and a JSON body on POST, which the
// web client sends.
func readRangeQuery(w http.ResponseWriter, r *http.Request) (rangeQuery, bool) {
	q := r.URL.Query()
	rq := rangeQuery{
		CarID:     q.Get("carId"),
		Location:  q.Get("location"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	if r.Method == http.MethodPost && !decodeJSON(w, r, &rq) {
		return rq, false
	}
	return rq, true
}

// CheckAvailability handles GET /api/cars/check-availability?carId&startDate&endDate
func (h *CarHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	rq, ok := readRangeQuery(w, r)
	if !ok {
		return
	}

	resp, err := h.availability.CheckAvailability(r.Context(), &request.AvailabilityRequest{
		CarID:     rq.CarID,
		StartDate: rq.StartDate,
		EndDate:   rq.EndDate,
	})
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	msg := "Car is available"
	if !resp.Available {
		msg = "Car is not available for selected dates"
	}
	utils.ResponseSuccessAs(w, msg, "available", resp.Available)
}

// FindAvailable handles GET /api/cars/find-available?location&startDate&endDate
func (h *CarHandler) FindAvailable(w http.ResponseWriter, r *http.Request) {
	rq, ok := readRangeQuery(w, r)
	if !ok {
		return
	}

	resp, err := h.availability.FindAvailable(r.Context(), &request.FindAvailableRequest{
		Location:  rq.Location,
		StartDate: rq.StartDate,
		EndDate:   rq.EndDate,
	})
	if err != nil {
		handleServiceError(w, h.log, err, "find available cars")
		return
	}
	utils.ResponseSuccessAs(w, "Available cars retrieved successfully", "cars", resp.Cars)
}

// ==================== OWNER ====================

// AddCar handles POST /api/owner/add-car
func (h *CarHandler) AddCar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.AddCar(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add car")
		return
	}
	utils.ResponseCreatedAs(w, "Car listed, awaiting approval", "car", car)
}

// UpdateCar handles PATCH /api/cars/{id}
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.UpdateCar(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update car")
		return
	}
	utils.ResponseSuccessAs(w, "Car updated successfully", "car", car)
}

// DeleteCar handles DELETE /api/cars/{id}
func (h *CarHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteCar(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete car")
		return
	}
	utils.ResponseSuccess(w, "Car deleted successfully", nil)
}

// GetOwnerCars handles GET /api/cars/owner/my-cars
func (h *CarHandler) GetOwnerCars(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	cars, err := h.service.GetOwnerCars(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "list owner cars")
		return
	}
	utils.ResponseSuccessAs(w, "Cars retrieved successfully", "cars", cars)
}

// OwnerDashboard handles GET /api/owner/dashboard
func (h *CarHandler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	dashboard, err := h.service.OwnerDashboard(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "load owner dashboard")
		return
	}
	utils.ResponseSuccess(w, "Dashboard retrieved successfully", dashboard)
}
