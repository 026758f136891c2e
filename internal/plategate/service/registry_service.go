package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
	"github.com/carbonaccess/plategate/internal/plategate/vision"
)

type EmployeeInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Role  string `json:"role" validate:"required,max=60"`
	TagID string `json:"tag_id" validate:"omitempty,max=64"`
	Photo []byte `json:"-"`
}

type VehicleInput struct {
	Plate    string `json:"plate" validate:"required,plate"`
	Model    string `json:"model" validate:"max=80"`
	Brand    string `json:"brand" validate:"max=80"`
	Color    string `json:"color" validate:"max=40"`
	Category string `json:"category" validate:"required,category"`
	OwnerID  *int64 `json:"owner_id" validate:"omitempty,gt=0"`
}

type RegistryService struct {
	employees store.EmployeeStore
	vehicles  store.VehicleStore
	log       *slog.Logger
}

func NewRegistryService(es store.EmployeeStore, vs store.VehicleStore, log *slog.Logger) *RegistryService {
	if log == nil {
		log = slog.Default()
	}
	return &RegistryService{employees: es, vehicles: vs, log: log}
}

func (s *RegistryService) RegisterEmployee(ctx context.Context, in EmployeeInput) (types.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.TagID = strings.TrimSpace(in.TagID)

	if err := validateStruct(in); err != nil {
		return types.Employee{}, err
	}
	if len(in.Photo) > 0 {
		if _, err := vision.DetectImageType(in.Photo); err != nil {
			return types.Employee{}, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
		}
	}

	e := types.Employee{
		Name:   in.Name,
		Role:   in.Role,
		Photo:  in.Photo,
		Active: true,
	}
	if in.TagID != "" {
		e.TagID = &in.TagID
	}

	created, err := s.employees.CreateEmployee(ctx, e)
	if errors.Is(err, store.ErrDuplicateTagID) {
		return types.Employee{}, ErrDuplicateTagID
	}
	if err != nil {
		return types.Employee{}, err
	}

	s.log.InfoContext(ctx, "employee registered",
		"employee_id", created.ID,
		"role", created.Role,
		"has_tag", created.TagID != nil,
	)
	return created, nil
}

func (s *RegistryService) RegisterVehicle(ctx context.Context, in VehicleInput) (types.Vehicle, error) {
	in.Plate = plate.Normalize(in.Plate)
	in.Model = strings.TrimSpace(in.Model)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Color = strings.TrimSpace(in.Color)
	in.Category = strings.TrimSpace(in.Category)

	if in.Plate == "" {
		return types.Vehicle{}, ErrEmptyPlate
	}
	if err := validateStruct(in); err != nil {
		return types.Vehicle{}, err
	}

	created, err := s.vehicles.CreateVehicle(ctx, types.Vehicle{
		Plate:    in.Plate,
		Model:    in.Model,
		Brand:    in.Brand,
		Color:    in.Color,
		Category: types.VehicleCategory(in.Category),
		OwnerID:  in.OwnerID,
	})
	switch {
	case errors.Is(err, store.ErrDuplicatePlate):
		return types.Vehicle{}, ErrDuplicatePlate
	case errors.Is(err, store.ErrOwnerNotFound):
		return types.Vehicle{}, ErrUnknownEmployee
	case err != nil:
		return types.Vehicle{}, err
	}

	s.log.InfoContext(ctx, "vehicle registered",
		"vehicle_id", created.ID,
		"plate", created.Plate,
		"category", created.Category,
	)
	return created, nil
}

// LookupVehicle returns the vehicle registered under p, which must already
// be canonical. Vehicles without an owner resolve with a nil Owner.
func (s *RegistryService) LookupVehicle(ctx context.Context, p string) (types.VehicleRecord, bool, error) {
	if p == "" {
		return types.VehicleRecord{}, false, ErrEmptyPlate
	}
	return s.vehicles.LookupVehicle(ctx, p)
}

func (s *RegistryService) DeactivateEmployee(ctx context.Context, id int64) error {
	err := s.employees.SetEmployeeActive(ctx, id, false)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownEmployee
	}
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "employee deactivated", "employee_id", id)
	return nil
}

func (s *RegistryService) GetEmployee(ctx context.Context, id int64) (types.Employee, error) {
	e, err := s.employees.GetEmployee(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.Employee{}, ErrUnknownEmployee
	}
	return e, err
}

func (s *RegistryService) ListEmployees(ctx context.Context, includeInactive bool) ([]types.Employee, error) {
	return s.employees.ListEmployees(ctx, includeInactive)
}

func (s *RegistryService) ListVehicles(ctx context.Context) ([]types.VehicleRecord, error) {
	return s.vehicles.ListVehicles(ctx)
}
